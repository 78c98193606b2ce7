package plan

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	planner "github.com/porticus-lab/go-planner"
	"github.com/porticus-lab/go-planner/canvas"
)

const twoPages = `
title: week
pages:
  - texts:
      - text: Monday
        dy: 40
    stickers:
      - src: sun.png
        dx: 300
  - texts:
      - text: Tuesday
      - text: Notes
        dx: 10
`

func newEditor(t *testing.T) (*planner.Editor, *canvas.Surface) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := canvas.New(
		canvas.WithLoader(canvas.MemLoader{"sun.png": buf.Bytes()}),
		canvas.WithLogger(logger),
	)
	if err != nil {
		t.Fatal(err)
	}
	e, err := planner.New(context.Background(), s, planner.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { e.Close() })
	return e, s
}

func TestParse(t *testing.T) {
	p, err := Parse([]byte(twoPages))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Title != "week" || len(p.Pages) != 2 {
		t.Fatalf("plan = %+v", p)
	}
	if got := p.Pages[0].Stickers[0]; got.Src != "sun.png" || got.DX != 300 {
		t.Errorf("sticker = %+v", got)
	}
	if got := p.Pages[0].Texts[0]; got.Text != "Monday" || got.DY != 40 {
		t.Errorf("text = %+v", got)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := map[string]string{
		"syntax":      "pages: [",
		"no pages":    "title: empty\n",
		"missing src": "pages:\n  - stickers:\n      - dx: 1\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(in)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(twoPages), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestApply(t *testing.T) {
	e, s := newEditor(t)
	p, err := Parse([]byte(twoPages))
	if err != nil {
		t.Fatal(err)
	}
	if err := Apply(context.Background(), e, p); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	pages, active := e.Pages()
	if len(pages) != 2 || active != 1 {
		t.Fatalf("pages=%d active=%d", len(pages), active)
	}
	if n, _ := pages[0].Snapshot.ObjectCount(); n != 2 {
		t.Errorf("page 1 has %d objects, want 2", n)
	}
	objs := s.Objects()
	if len(objs) != 2 {
		t.Fatalf("page 2 has %d objects, want 2", len(objs))
	}
	if tb := objs[1].(*canvas.Textbox); tb.Left != 110 {
		t.Errorf("moved text left = %v, want 110", tb.Left)
	}
}

func TestApplyMissingSticker(t *testing.T) {
	e, _ := newEditor(t)
	p := &Plan{Pages: []Page{{Stickers: []Sticker{{Src: "moon.png"}}}}}
	if err := Apply(context.Background(), e, p); err == nil {
		t.Fatal("expected an error")
	}
}

func TestApplyDeletions(t *testing.T) {
	e, s := newEditor(t)
	p, err := Parse([]byte(`
pages:
  - texts:
      - text: draft
        delete: true
      - text: keep
    stickers:
      - src: sun.png
        dx: 20
        delete: true
`))
	if err != nil {
		t.Fatal(err)
	}
	if !p.Pages[0].Texts[0].Delete || !p.Pages[0].Stickers[0].Delete {
		t.Fatalf("delete flags not parsed: %+v", p.Pages[0])
	}
	if err := Apply(context.Background(), e, p); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	pages, active := e.Pages()
	if n, err := pages[active].Snapshot.ObjectCount(); err != nil || n != 1 {
		t.Errorf("page has %d objects (err %v), want 1", n, err)
	}
	objs := s.Objects()
	if len(objs) != 1 || objs[0].(*canvas.Textbox).Text != "keep" {
		t.Errorf("remaining objects = %v", objs)
	}
}
