package canvas

import (
	"image"

	"github.com/google/uuid"
)

// Object kinds as they appear in snapshots.
const (
	KindTextbox = "textbox"
	KindImage   = "image"
)

// Object is an element of a surface scene. The concrete types are [*Textbox]
// and [*Image].
type Object interface {
	// ID returns the object's identifier, stable across snapshots.
	ID() string
	// Kind returns KindTextbox or KindImage.
	Kind() string

	clone() Object
	restore(from Object)
}

func newObjectID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Textbox is a block of text wrapped to a fixed width.
//
// Coordinates and sizes are in page points. Fields may be changed freely
// before the textbox is added to a surface; afterwards change them inside
// [Surface.Modify] so the edit is reported.
type Textbox struct {
	id string

	Text     string
	Left     float64
	Top      float64
	Width    float64
	FontSize float64
	// Fill is a hex color such as "#111" or "#1a1a1a".
	Fill string
}

// NewTextbox returns a textbox with a fresh id and the given text. Geometry
// and style are zero; the caller sets them.
func NewTextbox(text string) *Textbox {
	return &Textbox{id: newObjectID(), Text: text, Fill: "#000000"}
}

func (t *Textbox) ID() string   { return t.id }
func (t *Textbox) Kind() string { return KindTextbox }

func (t *Textbox) clone() Object {
	c := *t
	return &c
}

func (t *Textbox) restore(from Object) { *t = *from.(*Textbox) }

// Image is a raster sticker placed on the page.
//
// The decoded bitmap and its encoded source bytes are shared between clones
// and never modified.
type Image struct {
	id string

	// Src is the loader key the bitmap was fetched from. Snapshots store
	// only Src; restoring a snapshot loads the bitmap again.
	Src    string
	Left   float64
	Top    float64
	ScaleX float64
	ScaleY float64

	bitmap image.Image
	data   []byte
	mime   string
}

func (i *Image) ID() string   { return i.id }
func (i *Image) Kind() string { return KindImage }

func (i *Image) clone() Object {
	c := *i
	return &c
}

func (i *Image) restore(from Object) { *i = *from.(*Image) }

// Bitmap returns the decoded image.
func (i *Image) Bitmap() image.Image { return i.bitmap }

// Data returns the encoded source bytes and their MIME type.
func (i *Image) Data() ([]byte, string) { return i.data, i.mime }

// Size returns the natural pixel size of the bitmap.
func (i *Image) Size() (w, h int) {
	if i.bitmap == nil {
		return 0, 0
	}
	b := i.bitmap.Bounds()
	return b.Dx(), b.Dy()
}

// Bounds returns the placed rectangle of the image in page points.
func (i *Image) Bounds() (left, top, right, bottom float64) {
	w, h := i.Size()
	return i.Left, i.Top, i.Left + float64(w)*i.ScaleX, i.Top + float64(h)*i.ScaleY
}
