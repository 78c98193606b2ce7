package chrome

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/porticus-lab/go-planner/canvas"
)

// Renderer rasterizes scenes in a headless browser.
//
// A Renderer manages a headless browser instance that is reused across
// renders for performance. Each render runs in its own tab. It is safe for
// concurrent use.
//
// Call [Renderer.Close] when the Renderer is no longer needed to release
// browser resources.
type Renderer struct {
	cfg           rendererConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

var _ canvas.Renderer = (*Renderer)(nil)

// NewRenderer creates a Renderer with the given options.
//
// It starts a headless browser in the background. The caller must call
// [Renderer.Close] when finished.
func NewRenderer(opts ...Option) (*Renderer, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	path, err := browserPath(cfg)
	if err != nil {
		return nil, err
	}
	cfg.chromePath = path

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chrome: starting browser: %w", err)
	}

	return &Renderer{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases all resources held by the Renderer, including the
// browser process. Close is idempotent.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	r.browserCancel()
	r.allocCancel()
	return nil
}

// Render screenshots the scene at opts.Multiplier device pixels per point.
func (r *Renderer) Render(scene canvas.Scene, opts canvas.RasterOptions) ([]byte, error) {
	if err := r.checkClosed(); err != nil {
		return nil, err
	}

	html, err := pageHTML(scene)
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "planner-*.html")
	if err != nil {
		return nil, fmt.Errorf("chrome: creating temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.Write(html); err != nil {
		f.Close()
		return nil, fmt.Errorf("chrome: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("chrome: closing temp file: %w", err)
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("chrome: resolving path: %w", err)
	}
	return r.capture(scene.Width, scene.Height, "file://"+abs, opts)
}

// capture loads targetURL in a fresh tab sized to the page and takes a
// screenshot clipped to it.
func (r *Renderer) capture(width, height int, targetURL string, opts canvas.RasterOptions) ([]byte, error) {
	if opts.Multiplier <= 0 {
		opts.Multiplier = 1
	}

	tabCtx, tabCancel := chromedp.NewContext(r.browserCtx)
	defer tabCancel()

	ctx := tabCtx
	if r.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(tabCtx, r.cfg.timeout)
		defer cancel()
	}

	format := page.CaptureScreenshotFormatPng
	if opts.Format == canvas.FormatJPEG {
		format = page.CaptureScreenshotFormatJpeg
	} else if opts.Format != "" && opts.Format != canvas.FormatPNG {
		return nil, fmt.Errorf("%w: %q", canvas.ErrUnsupportedFormat, opts.Format)
	}

	var buf []byte
	if err := chromedp.Run(ctx,
		chromedp.EmulateViewport(int64(width), int64(height), chromedp.EmulateScale(opts.Multiplier)),
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			params := page.CaptureScreenshot().
				WithFormat(format).
				WithClip(&page.Viewport{
					X:      0,
					Y:      0,
					Width:  float64(width),
					Height: float64(height),
					Scale:  1,
				})
			if format == page.CaptureScreenshotFormatJpeg && opts.Quality > 0 {
				params = params.WithQuality(int64(opts.Quality))
			}

			var err error
			buf, err = params.Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("chrome: render failed: %w", err)
	}
	return buf, nil
}

func (r *Renderer) checkClosed() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	return nil
}
