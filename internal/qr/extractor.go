// Package qr extracts e-invoice QR payloads from uploaded PDF documents.
//
// Extraction renders each page at several scales and scans the frames for a
// QR symbol. Small QR codes need supersampling to resolve module boundaries,
// so high scales are tried first (they are also the common case for dense
// invoice layouts). Scanning starts at page 1 and visits every page; nothing
// assumes the QR sits on an early page.
//
// Failure semantics follow the recoverable-per-page rule: a page that fails
// to render or panics mid-decode is logged and skipped, never fatal for the
// document. Only a structurally invalid PDF or full exhaustion of all
// attempts surfaces an error (ErrInvalidPDF, ErrNoQRCode).
package qr

import (
	"bytes"
	"context"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"

	"qrfatura/internal/logger"
)

// DefaultScales are the render scale factors attempted per page, in
// descending order. The first successful decode short-circuits the rest.
var DefaultScales = []float64{5.0, 4.0, 3.0, 2.0, 1.5}

// ExtractorConfig holds configuration for the document extractor.
type ExtractorConfig struct {
	// Scales are the render scale factors attempted per page, high to low.
	Scales []float64

	// SkipValidation disables the structural PDF check on open.
	SkipValidation bool
}

// DefaultExtractorConfig returns an ExtractorConfig with sensible defaults.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Scales: DefaultScales,
	}
}

// Extractor scans PDF documents for a QR payload.
type Extractor struct {
	open    RasterizerOpener
	locator *Locator
	config  ExtractorConfig
	pdfConf *model.Configuration
	log     zerolog.Logger
}

// NewExtractor creates an Extractor using the MuPDF rasterizer and default
// configuration.
func NewExtractor() *Extractor {
	return NewExtractorWithConfig(OpenFitzRasterizer, DefaultExtractorConfig())
}

// NewExtractorWithConfig creates an Extractor with a custom rasterizer opener
// and configuration. Tests substitute a fake opener here.
func NewExtractorWithConfig(open RasterizerOpener, config ExtractorConfig) *Extractor {
	if len(config.Scales) == 0 {
		config.Scales = DefaultScales
	}
	return &Extractor{
		open:    open,
		locator: NewLocator(),
		config:  config,
		pdfConf: model.NewDefaultConfiguration(),
		log:     logger.WithComponent("qr-extractor"),
	}
}

// ExtractFromPDF returns the first QR payload decoded from the document,
// scanning pages in ascending order. It returns ErrNoQRCode when every page
// has been attempted without a decode and ErrInvalidPDF when the data is not
// a PDF at all.
func (e *Extractor) ExtractFromPDF(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewExtractionError("ExtractFromPDF", ErrContextCanceled, err.Error())
	}

	if !e.config.SkipValidation {
		if err := api.Validate(bytes.NewReader(data), e.pdfConf); err != nil {
			return "", NewExtractionError("ExtractFromPDF", ErrInvalidPDF, err.Error())
		}
	}

	rasterizer, err := e.open(data)
	if err != nil {
		return "", WrapExtractionError("ExtractFromPDF", err, "failed to open document")
	}
	defer func() {
		if closeErr := rasterizer.Close(); closeErr != nil {
			e.log.Warn().Err(closeErr).Msg("Failed to close rasterizer")
		}
	}()

	pageCount := rasterizer.PageCount()
	if pageCount == 0 {
		return "", NewExtractionError("ExtractFromPDF", ErrEmptyDocument, "")
	}

	for page := 0; page < pageCount; page++ {
		if err := ctx.Err(); err != nil {
			return "", NewExtractionError("ExtractFromPDF", ErrContextCanceled, err.Error())
		}

		if text, ok := e.scanPage(rasterizer, page); ok {
			e.log.Debug().
				Int("page", page+1).
				Int("payload_len", len(text)).
				Msg("QR code decoded")
			return text, nil
		}
	}

	return "", NewExtractionError("ExtractFromPDF", ErrNoQRCode, "")
}

// scanPage attempts every scale for one page. Render failures and panics are
// absorbed: a broken page means "no QR on this page", never a dead document.
func (e *Extractor) scanPage(rasterizer Rasterizer, page int) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn().
				Int("page", page+1).
				Interface("panic", r).
				Msg("Page scan panicked, skipping page")
			text, ok = "", false
		}
	}()

	for _, scale := range e.config.Scales {
		frame, err := rasterizer.RenderPage(page, scale)
		if err != nil {
			// Non-fatal: try the remaining scales for this page.
			e.log.Debug().
				Int("page", page+1).
				Float64("scale", scale).
				Err(err).
				Msg("Page render failed at scale")
			continue
		}

		if decoded, found := e.locator.DecodeFrame(frame); found {
			return decoded, true
		}
	}

	return "", false
}
