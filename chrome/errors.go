package chrome

import "errors"

// Sentinel errors returned by the package.
var (
	// ErrClosed is returned when attempting to use a closed [Renderer].
	ErrClosed = errors.New("chrome: renderer is closed")
)
