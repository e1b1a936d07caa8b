package qr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"
)

// fakeRasterizer serves pre-rendered frames and optional per-page render errors.
type fakeRasterizer struct {
	frames     []image.Image
	renderErrs map[int]error
	closed     bool
}

func (f *fakeRasterizer) PageCount() int { return len(f.frames) }

func (f *fakeRasterizer) RenderPage(page int, scale float64) (image.Image, error) {
	if err, ok := f.renderErrs[page]; ok {
		return nil, err
	}
	return f.frames[page], nil
}

func (f *fakeRasterizer) Close() error {
	f.closed = true
	return nil
}

func fakeOpener(r Rasterizer) RasterizerOpener {
	return func(data []byte) (Rasterizer, error) { return r, nil }
}

func testExtractor(r Rasterizer) *Extractor {
	return NewExtractorWithConfig(fakeOpener(r), ExtractorConfig{
		Scales:         []float64{1.0},
		SkipValidation: true,
	})
}

func blankPage() image.Image {
	return pageWithQR(200, 200, image.NewRGBA(image.Rect(0, 0, 0, 0)), image.Pt(0, 0))
}

func TestExtractFromPDFScansAllPages(t *testing.T) {
	const payload = "1234567890|GIB2025000009999|01.06.2025|750,00"
	rasterizer := &fakeRasterizer{frames: []image.Image{
		blankPage(),
		blankPage(),
		pageWithQR(300, 300, encodeQR(t, payload, 260), image.Pt(20, 20)),
	}}

	text, err := testExtractor(rasterizer).ExtractFromPDF(context.Background(), nil)
	if err != nil {
		t.Fatalf("ExtractFromPDF returned error: %v", err)
	}
	if text != payload {
		t.Errorf("extracted %q, want %q", text, payload)
	}
	if !rasterizer.closed {
		t.Error("rasterizer was not closed")
	}
}

func TestExtractFromPDFNoQRCode(t *testing.T) {
	rasterizer := &fakeRasterizer{frames: []image.Image{
		blankPage(), blankPage(), blankPage(),
	}}

	_, err := testExtractor(rasterizer).ExtractFromPDF(context.Background(), nil)
	if !errors.Is(err, ErrNoQRCode) {
		t.Fatalf("expected ErrNoQRCode, got %v", err)
	}
	if !rasterizer.closed {
		t.Error("rasterizer was not closed")
	}
}

func TestExtractFromPDFRenderFailureIsPerPage(t *testing.T) {
	const payload = "render-failure-recovery"
	rasterizer := &fakeRasterizer{
		frames: []image.Image{
			blankPage(),
			pageWithQR(300, 300, encodeQR(t, payload, 260), image.Pt(20, 20)),
		},
		renderErrs: map[int]error{0: fmt.Errorf("mupdf: broken page stream")},
	}

	text, err := testExtractor(rasterizer).ExtractFromPDF(context.Background(), nil)
	if err != nil {
		t.Fatalf("a single page render failure must not abort the document: %v", err)
	}
	if text != payload {
		t.Errorf("extracted %q, want %q", text, payload)
	}
}

func TestExtractFromPDFEmptyDocument(t *testing.T) {
	rasterizer := &fakeRasterizer{}

	_, err := testExtractor(rasterizer).ExtractFromPDF(context.Background(), nil)
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestExtractFromPDFOpenFailure(t *testing.T) {
	opener := func(data []byte) (Rasterizer, error) {
		return nil, NewExtractionError("OpenDocument", ErrRenderFailed, "boom")
	}
	extractor := NewExtractorWithConfig(opener, ExtractorConfig{SkipValidation: true})

	_, err := extractor.ExtractFromPDF(context.Background(), nil)
	if !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("expected ErrRenderFailed, got %v", err)
	}
}

func TestExtractFromPDFCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rasterizer := &fakeRasterizer{frames: []image.Image{blankPage()}}
	_, err := testExtractor(rasterizer).ExtractFromPDF(ctx, nil)
	if !errors.Is(err, ErrContextCanceled) {
		t.Fatalf("expected ErrContextCanceled, got %v", err)
	}
}

func TestExtractFromPDFInvalidPDF(t *testing.T) {
	extractor := NewExtractorWithConfig(fakeOpener(&fakeRasterizer{}), ExtractorConfig{
		Scales: []float64{1.0},
	})

	_, err := extractor.ExtractFromPDF(context.Background(), []byte("not a pdf at all"))
	if !errors.Is(err, ErrInvalidPDF) {
		t.Fatalf("expected ErrInvalidPDF, got %v", err)
	}
}
