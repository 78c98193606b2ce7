package planner

import (
	"context"
	"log/slog"

	"github.com/porticus-lab/go-planner/canvas"
)

// Controller keeps the active page's snapshot in step with the surface, and
// the surface in step with the active page when the active page changes.
//
// The controller is the surface's only subscriber: every edit on the surface
// is captured into the active page before the edit call returns.
type Controller struct {
	store   *PageStore
	surface Surface
	logger  *slog.Logger
	thumb   canvas.RasterOptions

	started bool
	cancel  func()
}

// NewController returns a controller over store and surface. A nil surface
// makes every method a no-op.
func NewController(store *PageStore, surface Surface, logger *slog.Logger, thumbScale float64) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:   store,
		surface: surface,
		logger:  logger,
		thumb:   canvas.RasterOptions{Format: canvas.FormatPNG, Multiplier: thumbScale},
	}
}

// Attach subscribes the controller to surface edits.
func (c *Controller) Attach() error {
	if c.surface == nil || c.cancel != nil {
		return nil
	}
	cancel, err := c.surface.Subscribe(c.onEdit)
	if err != nil {
		return err
	}
	c.cancel = cancel
	return nil
}

// Detach drops the subscription made by Attach.
func (c *Controller) Detach() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) onEdit(ev canvas.Event) {
	c.logger.Debug("surface edited", "event", ev.Type.String(), "object", ev.Object.ID(), "page", c.store.Active())
	c.CaptureActive()
}

// CaptureActive stores the surface's current scene and thumbnail into the
// active page. Both are read before either is written; if one read fails
// the page keeps its previous pair. It reports whether the page was updated.
func (c *Controller) CaptureActive() bool {
	if c.surface == nil {
		return false
	}
	active := c.store.Active()
	snap, err := c.surface.Serialize()
	if err != nil {
		c.logger.Warn("capture failed", "page", active, "error", err)
		return false
	}
	thumb, err := c.surface.Rasterize(c.thumb)
	if err != nil {
		c.logger.Warn("thumbnail failed", "page", active, "error", err)
		return false
	}
	return c.store.ReplaceAt(active, snap, thumb)
}

// Activate makes page index the active page and projects it onto the
// surface. The outgoing page is captured first, except on the very first
// activation when the surface holds no page yet. Activate returns once the
// surface shows the page.
func (c *Controller) Activate(ctx context.Context, index int) error {
	if c.surface == nil {
		return nil
	}
	if _, ok := c.store.At(index); !ok {
		return ErrPageOutOfRange
	}
	if c.started {
		c.CaptureActive()
	}
	if err := c.store.SetActive(index); err != nil {
		return err
	}
	c.started = true
	c.showActive(ctx)
	return nil
}

// ActivateNew appends p as the active page, after capturing the outgoing
// one, and shows it on the surface.
func (c *Controller) ActivateNew(ctx context.Context, p Page) {
	if c.surface == nil {
		return
	}
	if c.started {
		c.CaptureActive()
	}
	c.store.AppendAndActivate(p)
	c.started = true
	c.showActive(ctx)
}

func (c *Controller) showActive(ctx context.Context) {
	p, _ := c.store.At(c.store.Active())
	c.project(ctx, p.Snapshot, c.store.Active())
}

// project clears the surface and, if snap is non-nil, restores it and waits
// for the restore to finish. A restore that fails leaves the surface blank.
func (c *Controller) project(ctx context.Context, snap canvas.Snapshot, page int) {
	c.surface.Clear()
	if snap == nil {
		return
	}
	// Restores run to completion even if the caller gives up.
	n, err := c.surface.Deserialize(context.WithoutCancel(ctx), snap).Wait()
	if err != nil {
		c.logger.Warn("page restore failed, showing blank page", "page", page, "error", err)
		c.surface.Clear()
		return
	}
	c.logger.Debug("page restored", "page", page, "objects", n)
}
