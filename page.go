package planner

import (
	"math"
	"strings"

	"github.com/porticus-lab/go-planner/canvas"
)

// PageSize represents page dimensions in points (1/72 inch).
type PageSize struct {
	Width  float64 // Width in points.
	Height float64 // Height in points.
}

// Standard page sizes.
var (
	Planner = PageSize{Width: canvas.DefaultWidth, Height: canvas.DefaultHeight}
	A4      = PageSize{Width: 595.28, Height: 841.89}
	A5      = PageSize{Width: 419.53, Height: 595.28}
	Letter  = PageSize{Width: 612, Height: 792}
	Legal   = PageSize{Width: 612, Height: 1008}
)

// LookupPageSize returns the standard size with the given case-insensitive
// name.
func LookupPageSize(name string) (PageSize, bool) {
	switch strings.ToLower(name) {
	case "planner":
		return Planner, true
	case "a4":
		return A4, true
	case "a5":
		return A5, true
	case "letter":
		return Letter, true
	case "legal":
		return Legal, true
	}
	return PageSize{}, false
}

// Orientation represents the page orientation.
type Orientation int

const (
	// Portrait is the default vertical orientation.
	Portrait Orientation = iota
	// Landscape rotates the page to horizontal orientation.
	Landscape
)

// Oriented returns the size with width and height swapped for Landscape.
func (s PageSize) Oriented(o Orientation) PageSize {
	if o == Landscape {
		return PageSize{Width: s.Height, Height: s.Width}
	}
	return s
}

// Points returns the size rounded to whole points, the unit a drawing
// surface is sized in.
func (s PageSize) Points() (width, height int) {
	return int(math.Round(s.Width)), int(math.Round(s.Height))
}

// Page is one planner page.
//
// Snapshot and Thumbnail are replaced together from the same surface state and
// never edited in place; a nil Snapshot means nothing has been captured yet.
type Page struct {
	ID        string
	Snapshot  canvas.Snapshot
	Thumbnail []byte
}

// HasSnapshot reports whether content has been captured for the page.
func (p Page) HasSnapshot() bool {
	return p.Snapshot != nil
}
