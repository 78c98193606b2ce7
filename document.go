package planner

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// document accumulates full-bleed raster pages of one fixed size and
// assembles them into a PDF.
type document struct {
	size  PageSize
	pages [][]byte
}

func newDocument(size PageSize) *document {
	return &document{size: size}
}

// addPage appends a page showing raster, an encoded PNG or JPEG, stretched
// to fill the page from its origin.
func (d *document) addPage(raster []byte) {
	d.pages = append(d.pages, raster)
}

// importConfig fits each raster to the fixed page box. types.Full sizes the
// page from the raster's pixels, so rasters are anchored bottom-left at
// relative scale 1; they share the page's aspect ratio and cover it exactly.
func (d *document) importConfig() *pdfcpu.Import {
	imp := pdfcpu.DefaultImportConfig()
	imp.PageDim = &types.Dim{Width: d.size.Width, Height: d.size.Height}
	imp.PageSize = ""
	imp.UserDim = true
	imp.Pos = types.BottomLeft
	imp.Scale = 1
	imp.ScaleAbs = false
	imp.InpUnit = types.POINTS
	return imp
}

// write emits the PDF to w, one page per added raster in order.
func (d *document) write(w io.Writer) error {
	if len(d.pages) == 0 {
		return fmt.Errorf("planner: document has no pages")
	}
	imgs := make([]io.Reader, len(d.pages))
	for i, p := range d.pages {
		imgs[i] = bytes.NewReader(p)
	}
	if err := api.ImportImages(nil, w, imgs, d.importConfig(), model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("planner: assembling pdf: %w", err)
	}
	return nil
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
