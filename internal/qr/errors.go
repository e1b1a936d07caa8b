package qr

import (
	"errors"
	"fmt"
)

// Common QR extraction errors
var (
	// ErrNoQRCode is returned when every page, scale, region and polarity
	// combination has been exhausted without a successful decode. It is the
	// expected outcome for documents that simply carry no QR code.
	ErrNoQRCode = errors.New("no QR code found in document")

	// ErrInvalidPDF is returned when the uploaded data is not a structurally
	// valid PDF document.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrEmptyDocument is returned when the PDF contains no pages.
	ErrEmptyDocument = errors.New("document contains no pages")

	// ErrRenderFailed is returned when the rasterizer cannot be opened at all.
	// A per-page or per-scale render failure is absorbed, not surfaced.
	ErrRenderFailed = errors.New("page rasterization failed")

	// ErrContextCanceled is returned when extraction is canceled via context.
	ErrContextCanceled = errors.New("QR extraction was canceled")
)

// ExtractionError wraps errors with additional context about QR extraction failures.
type ExtractionError struct {
	// Op is the operation that failed (e.g., "ExtractFromPDF", "OpenDocument").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string

	// Page is the 1-based page number being processed (0 if not applicable).
	Page int
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("qr: %s failed (page %d): %v", e.Op, e.Page, e.Err)
	}
	if e.Details != "" {
		return fmt.Sprintf("qr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("qr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExtractionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExtractionError creates a new ExtractionError with the specified operation and underlying error.
func NewExtractionError(op string, err error, details string) *ExtractionError {
	return &ExtractionError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapExtractionError wraps an error as an ExtractionError if it isn't already one.
func WrapExtractionError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var extractionErr *ExtractionError
	if errors.As(err, &extractionErr) {
		return err // Already wrapped
	}

	return NewExtractionError(op, err, details)
}
