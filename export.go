package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/porticus-lab/go-planner/canvas"
)

// Exporter renders every page, in store order, into one PDF.
//
// It reuses the controller's surface: each page is projected onto the
// surface, rasterized and appended before the next page is touched.
type Exporter struct {
	ctrl   *Controller
	logger *slog.Logger
	raster canvas.RasterOptions
}

// NewExporter returns an exporter that rasterizes pages at scale pixels per
// point.
func NewExporter(ctrl *Controller, scale float64) *Exporter {
	return &Exporter{
		ctrl:   ctrl,
		logger: ctrl.logger,
		raster: canvas.RasterOptions{Format: canvas.FormatPNG, Multiplier: scale},
	}
}

// Export captures the active page, then renders all pages into a PDF with
// one surface-sized page per stored page. Pages without content export as
// blank pages. When it returns, the surface shows the active page again.
//
// Export does nothing and returns a nil Result when there is no surface.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	c := e.ctrl
	if c.surface == nil {
		return nil, nil
	}
	start := time.Now()

	c.CaptureActive()
	defer c.showActive(ctx)

	w, h := c.surface.Size()
	doc := newDocument(PageSize{Width: float64(w), Height: float64(h)})
	for i, p := range c.store.Pages() {
		c.project(ctx, p.Snapshot, i)
		raster, err := c.surface.Rasterize(e.raster)
		if err != nil {
			return nil, fmt.Errorf("%w: rasterizing page %d: %w", ErrExport, i+1, err)
		}
		doc.addPage(raster)
	}

	data, err := doc.bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}
	e.logger.Info("pages exported",
		"pages", len(doc.pages),
		"bytes", len(data),
		"elapsed", time.Since(start))
	return &Result{data: data, pages: len(doc.pages)}, nil
}
