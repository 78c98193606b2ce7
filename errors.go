package planner

import "errors"

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Editor].
	ErrClosed = errors.New("planner: editor is closed")

	// ErrPageOutOfRange is returned when a page index does not name a page.
	ErrPageOutOfRange = errors.New("planner: page index out of range")

	// ErrExport wraps every failure to produce or persist an exported
	// document. It is the only error class meant for the end user.
	ErrExport = errors.New("planner: export failed")
)
