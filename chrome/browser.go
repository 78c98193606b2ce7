package chrome

import (
	"fmt"

	"github.com/go-rod/rod/lib/launcher"
)

// browserPath picks the executable the renderer starts. An explicit path
// wins, then a locally installed Chrome or Chromium. Otherwise, with
// auto-download enabled, a Chromium build is fetched into rod's cache
// (~/.cache/rod/browser on Unix). An empty result lets chromedp search on
// its own.
func browserPath(cfg rendererConfig) (string, error) {
	if cfg.chromePath != "" {
		return cfg.chromePath, nil
	}
	if path, ok := launcher.LookPath(); ok {
		return path, nil
	}
	if !cfg.autoDownload {
		return "", nil
	}
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("chrome: downloading browser: %w", err)
	}
	return path, nil
}
