package planner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/porticus-lab/go-planner/canvas"
)

// isPDF checks whether data starts with the PDF magic number.
func isPDF(data []byte) bool {
	return len(data) > 4 && string(data[:5]) == "%PDF-"
}

func checkDocument(t *testing.T, res *Result, pages int) {
	t.Helper()
	if !isPDF(res.Bytes()) {
		t.Fatal("output is not a valid PDF")
	}
	if res.Pages() != pages {
		t.Errorf("exporter wrote %d pages, want %d", res.Pages(), pages)
	}
	n, err := res.PageCount()
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != pages {
		t.Errorf("PDF has %d pages, want %d", n, pages)
	}
	dims, err := res.PageDims()
	if err != nil {
		t.Fatalf("PageDims: %v", err)
	}
	for i, d := range dims {
		if !almostEqual(d.Width, 900, 0.5) || !almostEqual(d.Height, 1200, 0.5) {
			t.Errorf("page %d is %.1fx%.1f, want 900x1200", i+1, d.Width, d.Height)
		}
	}
}

func TestExport_TextStickerThenNewPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.editor.AddText("Type here"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.editor.AddSticker(ctx, "stickers/sticker1.png"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.editor.AddPage(ctx); err != nil {
		t.Fatal(err)
	}

	f.renderer.reset()
	res, err := f.editor.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	checkDocument(t, res, 2)

	scenes := f.renderer.recorded()
	if len(scenes) != 2 {
		t.Fatalf("rendered %d full pages, want 2", len(scenes))
	}
	first := scenes[0].Objects
	if len(first) != 2 || first[0].Kind() != canvas.KindTextbox || first[1].Kind() != canvas.KindImage {
		t.Errorf("page 1 objects = %v, want [textbox image]", kinds(first))
	}
	if len(scenes[1].Objects) != 0 {
		t.Errorf("page 2 objects = %v, want none", kinds(scenes[1].Objects))
	}
}

func kinds(objs []canvas.Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Kind()
	}
	return out
}

func TestExport_AddThenRemoveIsBlank(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.editor.AddText("temporary")
	if ok, err := f.editor.DeleteSelected(); err != nil || !ok {
		t.Fatalf("DeleteSelected = %v, %v", ok, err)
	}
	if n := objectCount(t, f.activeSnapshot(t)); n != 0 {
		t.Fatalf("captured %d objects after removal, want 0", n)
	}

	f.renderer.reset()
	res, err := f.editor.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	checkDocument(t, res, 1)
	if scenes := f.renderer.recorded(); len(scenes) != 1 || len(scenes[0].Objects) != 0 {
		t.Errorf("exported page is not blank: %+v", scenes)
	}
}

func TestExport_OrderAndBlankPreservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Page k gets k textboxes; page 0 is never edited.
	const n = 4
	for k := 1; k < n; k++ {
		f.editor.AddPage(ctx)
		for j := 0; j < k; j++ {
			f.editor.AddText("item")
		}
	}
	f.editor.Select(ctx, 2)

	f.renderer.reset()
	res, err := f.editor.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	checkDocument(t, res, n)

	scenes := f.renderer.recorded()
	if len(scenes) != n {
		t.Fatalf("rendered %d pages, want %d", len(scenes), n)
	}
	for k, sc := range scenes {
		if len(sc.Objects) != k {
			t.Errorf("page %d has %d objects, want %d", k, len(sc.Objects), k)
		}
	}
}

func TestExport_ScaleKeepsPageSize(t *testing.T) {
	for _, scale := range []float64{0.5, 2} {
		f := newFixture(t, WithExportScale(scale))
		f.editor.AddText("sharp")
		f.editor.AddPage(context.Background())

		res, err := f.editor.Export(context.Background())
		if err != nil {
			t.Fatalf("scale %g: Export: %v", scale, err)
		}
		checkDocument(t, res, 2)
		if n := len(f.renderer.recorded()); scale >= 1 && n != 2 {
			t.Errorf("scale %g: rendered %d export pages, want 2", scale, n)
		}
	}
}

func TestExport_IncludesUncapturedEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Edit behind the controller's back: no event reaches the store.
	f.editor.ctrl.Detach()
	f.surface.Add(canvas.NewTextbox("late edit"))
	if err := f.editor.ctrl.Attach(); err != nil {
		t.Fatal(err)
	}

	f.renderer.reset()
	if _, err := f.editor.Export(ctx); err != nil {
		t.Fatal(err)
	}
	if scenes := f.renderer.recorded(); len(scenes[0].Objects) != 1 {
		t.Error("export did not capture the active page first")
	}
}

func TestExport_RestoresActivePage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.editor.AddText("first")
	f.editor.AddPage(ctx)
	f.editor.AddText("second")
	f.editor.AddText("second again")
	f.editor.AddPage(ctx)
	f.editor.Select(ctx, 1)
	want := f.live(t)

	if _, err := f.editor.Export(ctx); err != nil {
		t.Fatal(err)
	}
	if !f.live(t).Equal(want) {
		t.Error("surface does not show the active page after export")
	}
	if _, active := f.editor.Pages(); active != 1 {
		t.Errorf("active = %d after export, want 1", active)
	}
}

func TestExport_RasterFailure(t *testing.T) {
	b, e := newBrokenFixture(t)
	b.rasterizeErr = errors.New("gpu on fire")

	_, err := e.Export(context.Background())
	if !errors.Is(err, ErrExport) {
		t.Fatalf("err = %v, want ErrExport", err)
	}
}

func TestExportFile(t *testing.T) {
	f := newFixture(t)
	f.editor.AddText("saved")
	dir := t.TempDir()

	path, err := f.editor.ExportFile(context.Background(), dir)
	if err != nil {
		t.Fatalf("ExportFile: %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Errorf("path = %q, want %s in %s", path, FileName, dir)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !isPDF(data) {
		t.Fatal("written file is not a valid PDF")
	}
}

func TestExportFile_CustomName(t *testing.T) {
	f := newFixture(t, WithFileName("week-42.pdf"))
	path, err := f.editor.ExportFile(context.Background(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "week-42.pdf" {
		t.Errorf("saved as %q", filepath.Base(path))
	}
}

func TestExportFile_PersistFailure(t *testing.T) {
	f := newFixture(t)
	missing := filepath.Join(t.TempDir(), "does", "not", "exist")

	_, err := f.editor.ExportFile(context.Background(), missing)
	if !errors.Is(err, ErrExport) {
		t.Fatalf("err = %v, want ErrExport", err)
	}
}
