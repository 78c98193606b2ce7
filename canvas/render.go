package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Raster formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// lineHeight is the text line advance as a multiple of the font size.
const lineHeight = 1.16

// RasterOptions controls rasterization.
type RasterOptions struct {
	// Format is FormatPNG (default) or FormatJPEG.
	Format string
	// Multiplier scales the page size to pixels. 1 renders one pixel per
	// point. Defaults to 1.
	Multiplier float64
	// Quality is the JPEG quality, 1-100. Defaults to 92.
	Quality int
}

func (o RasterOptions) resolved() RasterOptions {
	if o.Format == "" {
		o.Format = FormatPNG
	}
	if o.Multiplier <= 0 {
		o.Multiplier = 1
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = 92
	}
	return o
}

// PixelSize returns the raster size of a width×height page under o.
func (o RasterOptions) PixelSize(width, height int) (int, int) {
	m := o.resolved().Multiplier
	return max(1, int(math.Round(float64(width)*m))), max(1, int(math.Round(float64(height)*m)))
}

// Scene is a detached copy of a surface's content handed to a Renderer.
type Scene struct {
	Width      int
	Height     int
	Background string
	Objects    []Object
}

// Renderer turns a scene into encoded raster bytes.
type Renderer interface {
	Render(scene Scene, opts RasterOptions) ([]byte, error)
}

// NativeRenderer rasterizes scenes in pure Go. Text is set in Go Regular.
// It is safe for concurrent use.
type NativeRenderer struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewNativeRenderer parses the embedded font and returns a renderer.
func NewNativeRenderer() (*NativeRenderer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("canvas: parsing font: %w", err)
	}
	return &NativeRenderer{font: f, faces: make(map[float64]font.Face)}, nil
}

// Render draws the background, then every object in stacking order.
func (r *NativeRenderer) Render(scene Scene, opts RasterOptions) ([]byte, error) {
	opts = opts.resolved()
	bg, err := parseColor(scene.Background)
	if err != nil {
		return nil, fmt.Errorf("canvas: background: %w", err)
	}

	w, h := opts.PixelSize(scene.Width, scene.Height)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	m := opts.Multiplier
	for _, o := range scene.Objects {
		switch v := o.(type) {
		case *Textbox:
			if err := r.drawText(dst, v, m); err != nil {
				return nil, err
			}
		case *Image:
			drawImage(dst, v, m)
		}
	}
	return encodeRaster(dst, opts)
}

func (r *NativeRenderer) face(size float64) (font.Face, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("canvas: font face %.1f: %w", size, err)
	}
	r.faces[size] = f
	return f, nil
}

func (r *NativeRenderer) drawText(dst *image.RGBA, t *Textbox, m float64) error {
	if t.Text == "" || t.FontSize <= 0 {
		return nil
	}
	col, err := parseColor(t.Fill)
	if err != nil {
		return fmt.Errorf("canvas: textbox %s fill: %w", t.id, err)
	}
	size := t.FontSize * m
	face, err := r.face(size)
	if err != nil {
		return err
	}

	// Face metrics are read under the lock; opentype faces are not safe
	// for concurrent use.
	r.mu.Lock()
	defer r.mu.Unlock()

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face}
	x := fixed.I(int(math.Round(t.Left * m)))
	y := t.Top*m + float64(face.Metrics().Ascent.Ceil())
	advance := size * lineHeight
	for _, line := range wrapText(d, t.Text, fixed.I(int(math.Round(t.Width*m)))) {
		d.Dot = fixed.Point26_6{X: x, Y: fixed.I(int(math.Round(y)))}
		d.DrawString(line)
		y += advance
	}
	return nil
}

// wrapText breaks text into lines no wider than maxWidth, breaking at spaces.
// A zero maxWidth disables wrapping. A word wider than maxWidth gets a line
// of its own.
func wrapText(d *font.Drawer, text string, maxWidth fixed.Int26_6) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if maxWidth <= 0 || len(words) == 0 {
			lines = append(lines, para)
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if d.MeasureString(candidate) > maxWidth {
				lines = append(lines, line)
				line = w
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

func drawImage(dst *image.RGBA, img *Image, m float64) {
	if img.bitmap == nil {
		return
	}
	left, top, right, bottom := img.Bounds()
	rect := image.Rect(
		int(math.Round(left*m)), int(math.Round(top*m)),
		int(math.Round(right*m)), int(math.Round(bottom*m)),
	)
	if rect.Empty() {
		return
	}
	draw.CatmullRom.Scale(dst, rect, img.bitmap, img.bitmap.Bounds(), draw.Over, nil)
}

func encodeRaster(img image.Image, opts RasterOptions) ([]byte, error) {
	var buf bytes.Buffer
	switch opts.Format {
	case FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("canvas: encoding png: %w", err)
		}
	case FormatJPEG, "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
			return nil, fmt.Errorf("canvas: encoding jpeg: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
	return buf.Bytes(), nil
}

// Reencode converts encoded raster bytes into the format named by opts.
func Reencode(data []byte, opts RasterOptions) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("canvas: decoding raster: %w", err)
	}
	return encodeRaster(img, opts.resolved())
}
