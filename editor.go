package planner

import (
	"context"
	"fmt"
	"sync"

	"github.com/porticus-lab/go-planner/canvas"
)

// Placement of newly added objects, in points.
const (
	textLeft     = 100
	textTop      = 100
	textWidth    = 400
	textFontSize = 40
	textFill     = "#111"

	stickerLeft  = 150
	stickerTop   = 150
	stickerScale = 0.4
)

// Editor is a multi-page planner over a single drawing surface.
//
// Each method runs one complete flow (an edit, a page switch or an export)
// and holds the editor for its whole duration, including any asynchronous
// restore or image load, so flows never interleave on the surface. It is
// safe for concurrent use.
//
// An Editor created with a nil surface accepts every call and does nothing.
type Editor struct {
	cfg      editorConfig
	surface  Surface
	store    *PageStore
	ctrl     *Controller
	exporter *Exporter

	mu     sync.Mutex
	closed bool
}

// New returns an editor with one blank, active page. It subscribes to the
// surface's edits; the surface must not have another subscriber.
func New(ctx context.Context, surface Surface, opts ...Option) (*Editor, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	store := NewPageStore(cfg.newID)
	ctrl := NewController(store, surface, cfg.logger, cfg.thumbScale)
	e := &Editor{
		cfg:      cfg,
		surface:  surface,
		store:    store,
		ctrl:     ctrl,
		exporter: NewExporter(ctrl, cfg.exportScale),
	}

	if err := ctrl.Attach(); err != nil {
		return nil, fmt.Errorf("planner: attaching to surface: %w", err)
	}
	ctrl.ActivateNew(ctx, store.NewPage())
	if surface == nil {
		// Keep the page model usable for read-only callers.
		store.AppendAndActivate(store.NewPage())
	}
	return e, nil
}

// Close detaches the editor from its surface. Close is idempotent.
func (e *Editor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.ctrl.Detach()
	return nil
}

// lock acquires the editor for one flow.
func (e *Editor) lock() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	return nil
}

// AddPage captures the current page, appends a blank page and makes it
// active. It returns the new page's index.
func (e *Editor) AddPage(ctx context.Context) (int, error) {
	if err := e.lock(); err != nil {
		return 0, err
	}
	defer e.mu.Unlock()

	e.ctrl.ActivateNew(ctx, e.store.NewPage())
	e.cfg.logger.Info("page added", "page", e.store.Active(), "pages", e.store.Len())
	return e.store.Active(), nil
}

// Select makes page index the active page.
func (e *Editor) Select(ctx context.Context, index int) error {
	if err := e.lock(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	return e.ctrl.Activate(ctx, index)
}

// AddText places a new textbox on the active page and selects it.
func (e *Editor) AddText(text string) (*canvas.Textbox, error) {
	if err := e.lock(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	if e.surface == nil {
		return nil, nil
	}
	t := canvas.NewTextbox(text)
	t.Left, t.Top = textLeft, textTop
	t.Width = textWidth
	t.FontSize = textFontSize
	t.Fill = textFill
	if err := e.surface.Add(t); err != nil {
		return nil, err
	}
	e.surface.Select(t)
	return t, nil
}

// AddSticker loads the image at src, places it on the active page and
// selects it. If the image cannot be loaded the page is left unchanged and
// the load error is returned.
func (e *Editor) AddSticker(ctx context.Context, src string) (*canvas.Image, error) {
	if err := e.lock(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	if e.surface == nil {
		return nil, nil
	}
	img, err := e.surface.LoadImage(ctx, src).Wait()
	if err != nil {
		e.cfg.logger.Warn("sticker not added", "src", src, "error", err)
		return nil, fmt.Errorf("planner: loading sticker: %w", err)
	}
	img.Left, img.Top = stickerLeft, stickerTop
	img.ScaleX, img.ScaleY = stickerScale, stickerScale
	if err := e.surface.Add(img); err != nil {
		return nil, err
	}
	e.surface.Select(img)
	return img, nil
}

// DeleteSelected removes the selected object from the active page. It
// reports whether anything was removed.
func (e *Editor) DeleteSelected() (bool, error) {
	if err := e.lock(); err != nil {
		return false, err
	}
	defer e.mu.Unlock()

	if e.surface == nil {
		return false, nil
	}
	obj := e.surface.Selected()
	if obj == nil {
		return false, nil
	}
	e.surface.Remove(obj)
	e.surface.ClearSelection()
	return true, nil
}

// MoveSelected shifts the selected object by dx, dy points. It reports
// whether an object was moved.
func (e *Editor) MoveSelected(dx, dy float64) (bool, error) {
	if err := e.lock(); err != nil {
		return false, err
	}
	defer e.mu.Unlock()

	if e.surface == nil {
		return false, nil
	}
	switch obj := e.surface.Selected().(type) {
	case *canvas.Textbox:
		return e.surface.Modify(obj, func() { obj.Left += dx; obj.Top += dy })
	case *canvas.Image:
		return e.surface.Modify(obj, func() { obj.Left += dx; obj.Top += dy })
	}
	return false, nil
}

// EditSelectedText replaces the text of the selected textbox. It reports
// whether a textbox was edited and fails with [canvas.ErrNotTextbox] when
// the selection is another kind of object.
func (e *Editor) EditSelectedText(text string) (bool, error) {
	if err := e.lock(); err != nil {
		return false, err
	}
	defer e.mu.Unlock()

	if e.surface == nil {
		return false, nil
	}
	obj := e.surface.Selected()
	if obj == nil {
		return false, nil
	}
	t, ok := obj.(*canvas.Textbox)
	if !ok {
		return false, canvas.ErrNotTextbox
	}
	return e.surface.Modify(t, func() { t.Text = text })
}

// Pages returns a copy of the pages in order and the active index.
func (e *Editor) Pages() ([]Page, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Pages(), e.store.Active()
}

// ActiveIndex returns the index of the active page.
func (e *Editor) ActiveIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Active()
}

// Export renders every page into a PDF. The returned error wraps
// [ErrExport]. With a nil surface Export returns a nil Result.
func (e *Editor) Export(ctx context.Context) (*Result, error) {
	if err := e.lock(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	return e.exporter.Export(ctx)
}

// ExportFile exports and saves the PDF in dir under the configured file
// name, [FileName] by default. It returns the written path, or "" when
// there is no surface.
func (e *Editor) ExportFile(ctx context.Context, dir string) (string, error) {
	res, err := e.Export(ctx)
	if err != nil || res == nil {
		return "", err
	}
	path, err := res.SaveIn(dir, e.cfg.fileName)
	if err != nil {
		e.cfg.logger.Error("export not saved", "dir", dir, "error", err)
		return "", err
	}
	e.cfg.logger.Info("export saved", "path", path, "pages", res.Pages())
	return path, nil
}
