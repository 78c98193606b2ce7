package chrome

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os/exec"
	"testing"

	"github.com/porticus-lab/go-planner/canvas"
)

// onePixelPNG is a 1×1 red PNG.
var onePixelPNG = func() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{R: 0xff, A: 0xff})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}()

// chromeAvailable reports whether a Chrome/Chromium executable is in PATH.
func chromeAvailable() bool {
	for _, name := range []string{
		"chromium-browser", "chromium", "google-chrome",
		"google-chrome-stable", "chrome",
	} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func skipIfNoChrome(t *testing.T) {
	t.Helper()
	if !chromeAvailable() {
		t.Skip("skipping: Chrome/Chromium not found in PATH")
	}
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	skipIfNoChrome(t)
	r, err := NewRenderer(WithNoSandbox())
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRender_PageSize(t *testing.T) {
	r := newTestRenderer(t)

	tb := canvas.NewTextbox("Hello")
	tb.Left, tb.Top, tb.Width, tb.FontSize, tb.Fill = 10, 10, 100, 20, "#000"
	data, err := r.Render(canvas.Scene{
		Width: 200, Height: 100, Background: "#ffffff",
		Objects: []canvas.Object{tb},
	}, canvas.RasterOptions{Multiplier: 2})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("not a png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Errorf("raster size = %dx%d, want 400x200", b.Dx(), b.Dy())
	}
}

func TestRender_AsSurfaceRenderer(t *testing.T) {
	r := newTestRenderer(t)

	s, err := canvas.New(canvas.WithRenderer(r), canvas.WithSize(300, 400))
	if err != nil {
		t.Fatal(err)
	}
	data, err := s.Rasterize(canvas.RasterOptions{Format: canvas.FormatJPEG, Quality: 80})
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
		t.Fatal("output is not a JPEG")
	}
}

func TestRenderer_CloseIdempotent(t *testing.T) {
	skipIfNoChrome(t)

	r, err := NewRenderer(WithNoSandbox())
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestRenderer_UsedAfterClose(t *testing.T) {
	skipIfNoChrome(t)

	r, err := NewRenderer(WithNoSandbox())
	if err != nil {
		t.Fatal(err)
	}
	r.Close()

	_, err = r.Render(canvas.Scene{Width: 10, Height: 10, Background: "#fff"}, canvas.RasterOptions{})
	if err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
