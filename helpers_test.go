package planner

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/porticus-lab/go-planner/canvas"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stickerPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.NRGBA{B: 0xff, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// recordingRenderer renders natively and remembers every scene drawn at
// page resolution or above, which is what the exporter draws. Thumbnails are
// not recorded.
type recordingRenderer struct {
	inner *canvas.NativeRenderer

	mu     sync.Mutex
	scenes []canvas.Scene
}

func (r *recordingRenderer) Render(scene canvas.Scene, opts canvas.RasterOptions) ([]byte, error) {
	if opts.Multiplier >= 1 {
		r.mu.Lock()
		r.scenes = append(r.scenes, scene)
		r.mu.Unlock()
	}
	return r.inner.Render(scene, opts)
}

func (r *recordingRenderer) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenes = nil
}

func (r *recordingRenderer) recorded() []canvas.Scene {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]canvas.Scene(nil), r.scenes...)
}

type fixture struct {
	editor   *Editor
	surface  *canvas.Surface
	renderer *recordingRenderer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	native, err := canvas.NewNativeRenderer()
	if err != nil {
		t.Fatal(err)
	}
	rec := &recordingRenderer{inner: native}
	s, err := canvas.New(
		canvas.WithRenderer(rec),
		canvas.WithLoader(canvas.MemLoader{"stickers/sticker1.png": stickerPNG(t)}),
		canvas.WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatal(err)
	}
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	e, err := New(context.Background(), s, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return &fixture{editor: e, surface: s, renderer: rec}
}

// activeSnapshot returns the stored snapshot of the active page.
func (f *fixture) activeSnapshot(t *testing.T) canvas.Snapshot {
	t.Helper()
	pages, active := f.editor.Pages()
	return pages[active].Snapshot
}

// live captures the surface directly.
func (f *fixture) live(t *testing.T) canvas.Snapshot {
	t.Helper()
	snap, err := f.surface.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func objectCount(t *testing.T, snap canvas.Snapshot) int {
	t.Helper()
	n, err := snap.ObjectCount()
	if err != nil {
		t.Fatalf("ObjectCount: %v", err)
	}
	return n
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding png: %v", err)
	}
	return img
}
