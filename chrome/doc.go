// Package chrome rasterizes planner scenes with headless Chrome.
//
// A [Renderer] lays a [canvas.Scene] out as an HTML page (absolutely
// positioned text blocks and inline sticker images on a page-sized body) and
// screenshots it through the Chrome DevTools Protocol. It implements
// [canvas.Renderer], so it can replace the pure-Go renderer:
//
//	r, err := chrome.NewRenderer(chrome.WithNoSandbox())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	s, err := canvas.New(canvas.WithRenderer(r))
//
// The browser process is started once and reused for every render. Chrome
// or Chromium must be available in PATH, or use [WithAutoDownload].
package chrome
