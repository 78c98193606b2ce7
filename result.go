package planner

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Result holds an exported PDF and provides helpers for common output
// formats such as raw bytes, base64 encoding, and streaming readers.
//
// It is safe to call its methods multiple times; the underlying data is
// never modified.
type Result struct {
	data  []byte
	pages int
}

// Bytes returns the raw PDF content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Base64 returns the PDF encoded as a standard base64 string (RFC 4648).
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the PDF content.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the PDF to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	if err := os.WriteFile(path, r.data, perm); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}

// SaveIn writes the PDF as name inside dir and returns the file path.
func (r *Result) SaveIn(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if err := r.WriteToFile(path, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Len returns the size of the PDF in bytes.
func (r *Result) Len() int {
	return len(r.data)
}

// Pages returns the number of pages the exporter wrote.
func (r *Result) Pages() int {
	return r.pages
}

// PageCount parses the PDF and returns its page count.
func (r *Result) PageCount() (int, error) {
	n, err := api.PageCount(r.Reader(), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("planner: reading page count: %w", err)
	}
	return n, nil
}

// PageDims parses the PDF and returns every page's size in points.
func (r *Result) PageDims() ([]PageSize, error) {
	dims, err := api.PageDims(r.Reader(), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("planner: reading page sizes: %w", err)
	}
	sizes := make([]PageSize, len(dims))
	for i, d := range dims {
		sizes[i] = PageSize{Width: d.Width, Height: d.Height}
	}
	return sizes, nil
}

// ReadResult loads an existing PDF file so it can be inspected.
func ReadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	r := &Result{data: data}
	if r.pages, err = r.PageCount(); err != nil {
		return nil, err
	}
	return r, nil
}
