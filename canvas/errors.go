package canvas

import "errors"

// Sentinel errors returned by the package.
var (
	// ErrMalformedSnapshot is returned when a snapshot cannot be restored,
	// either because it does not parse or because it was produced by a
	// surface with different page dimensions.
	ErrMalformedSnapshot = errors.New("canvas: malformed snapshot")

	// ErrAlreadySubscribed is returned when a second listener subscribes to a
	// surface. A surface has at most one subscriber.
	ErrAlreadySubscribed = errors.New("canvas: surface already has a subscriber")

	// ErrNotTextbox is returned when a text edit targets a non-text object.
	ErrNotTextbox = errors.New("canvas: object is not a textbox")

	// ErrUnsupportedFormat is returned by renderers for unknown raster formats.
	ErrUnsupportedFormat = errors.New("canvas: unsupported raster format")

	// ErrInvalidObject is returned when an object would leave the scene
	// unable to be captured or rendered, such as a textbox with a fill that
	// is not a hex color.
	ErrInvalidObject = errors.New("canvas: invalid object")

	// ErrImageTooLarge is returned when a sticker's pixel dimensions exceed
	// the surface's decode budget.
	ErrImageTooLarge = errors.New("canvas: image too large")
)
