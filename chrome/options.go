package chrome

import "time"

// rendererConfig holds internal configuration for a Renderer.
type rendererConfig struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     string
	autoDownload bool
}

func defaultConfig() rendererConfig {
	return rendererConfig{
		timeout:  30 * time.Second,
		headless: "new",
	}
}

// Option configures a [Renderer].
type Option func(*rendererConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *rendererConfig) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration for a single render.
// Defaults to 30 seconds. A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *rendererConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *rendererConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload downloads a Chromium build when no browser is found
// locally and no path was given with [WithChromePath].
func WithAutoDownload() Option {
	return func(c *rendererConfig) {
		c.autoDownload = true
	}
}
