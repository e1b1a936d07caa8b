package qr

import (
	"image"

	"github.com/gen2brain/go-fitz"
)

// Rasterizer renders single pages of an open PDF document into pixel buffers.
//
// One open Rasterizer serves any number of RenderPage calls at any scale
// without re-parsing the document. Implementations are not required to be
// safe for concurrent use; the extractor renders strictly sequentially.
type Rasterizer interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// RenderPage renders the 0-based page at the given scale factor
	// (1.0 = 72 DPI) and returns the pixel buffer.
	RenderPage(page int, scale float64) (image.Image, error)

	// Close releases the underlying document resources.
	Close() error
}

// RasterizerOpener opens a Rasterizer over raw PDF bytes. The extractor takes
// an opener rather than a concrete implementation so tests can substitute a
// fake renderer.
type RasterizerOpener func(data []byte) (Rasterizer, error)

// fitzRasterizer renders pages through MuPDF (go-fitz).
type fitzRasterizer struct {
	doc *fitz.Document
}

// OpenFitzRasterizer opens a MuPDF-backed Rasterizer over raw PDF bytes.
// It is the production RasterizerOpener.
func OpenFitzRasterizer(data []byte) (Rasterizer, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, NewExtractionError("OpenDocument", ErrRenderFailed, err.Error())
	}
	return &fitzRasterizer{doc: doc}, nil
}

func (r *fitzRasterizer) PageCount() int {
	return r.doc.NumPage()
}

func (r *fitzRasterizer) RenderPage(page int, scale float64) (image.Image, error) {
	img, err := r.doc.ImageDPI(page, 72*scale)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (r *fitzRasterizer) Close() error {
	return r.doc.Close()
}
