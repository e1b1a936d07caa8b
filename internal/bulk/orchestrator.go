// Package bulk drives extraction, parsing and supplier resolution over a set
// of uploaded invoice PDFs.
//
// Files are processed in fixed-size chunks of concurrent operations: within a
// chunk every item runs concurrently, chunks run sequentially. This bounds
// simultaneous PDF rendering (memory and CPU heavy) while still overlapping
// the I/O-bound supplier lookups. One item's failure never aborts the batch;
// the worst outcome for a file is a QrFailed item awaiting manual entry.
//
// The batch item list is the only shared mutable state. Completed items are
// written back by matching id, never by index, since items inside a chunk
// complete in unpredictable order.
package bulk

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"qrfatura/internal/logger"
	"qrfatura/internal/parser"
	"qrfatura/pkg/models"
)

// DefaultChunkSize bounds how many files are extracted concurrently.
const DefaultChunkSize = 3

// QRExtractor pulls a raw QR payload out of a PDF document.
type QRExtractor interface {
	ExtractFromPDF(ctx context.Context, data []byte) (string, error)
}

// SupplierResolver is the persistence collaborator for supplier identities.
// Implemented by database.Store; a nil resolver disables persistence (dry
// runs) without changing pipeline behavior.
type SupplierResolver interface {
	FindOrCreateSupplier(ctx context.Context, tenantID, taxID, observedName string) (*models.Supplier, error)
	RenameSupplierByTaxID(ctx context.Context, tenantID, taxID, newName string) error
}

// BulkFile is one uploaded binary entering a batch.
type BulkFile struct {
	Name string
	Data []byte
}

// Options configures one ProcessBatch run. The two callbacks are the only
// externally observable incremental output; both may be nil. Callbacks are
// invoked from the chunk worker goroutines, so calls within a chunk can run
// concurrently: implementations must be safe for concurrent use.
type Options struct {
	TenantID string

	// OnProgress receives (processedCount, totalCount) after each item
	// completes. The count is monotonically increasing; which item triggers
	// a given tick is non-deterministic within a chunk.
	OnProgress func(processed, total int)

	// OnItemProcessed receives the completed item's full state.
	OnItemProcessed func(item Item)
}

// Config holds orchestrator configuration.
type Config struct {
	// ChunkSize is the number of files processed concurrently.
	// Defaults to DefaultChunkSize.
	ChunkSize int
}

// Orchestrator runs the extraction pipeline over batches of files.
type Orchestrator struct {
	extractor QRExtractor
	resolver  SupplierResolver
	sink      InvoiceSink
	chunkSize int
	log       zerolog.Logger
}

// New creates an Orchestrator. resolver and sink may be nil, disabling
// supplier persistence and batch commit respectively.
func New(extractor QRExtractor, resolver SupplierResolver, sink InvoiceSink, config Config) *Orchestrator {
	chunkSize := config.ChunkSize
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	return &Orchestrator{
		extractor: extractor,
		resolver:  resolver,
		sink:      sink,
		chunkSize: chunkSize,
		log:       logger.WithComponent("bulk-orchestrator"),
	}
}

// ProcessBatch runs extraction, parsing, validation and supplier resolution
// over every file and returns the completed item list. Once started a batch
// runs to completion; cancellation mid-batch is not supported.
func (o *Orchestrator) ProcessBatch(ctx context.Context, files []BulkFile, opts Options) []Item {
	items := make([]Item, len(files))
	for idx, file := range files {
		items[idx] = NewItem(file.Name, file.Data)
	}

	total := len(items)
	o.log.Info().
		Int("files", total).
		Int("chunk_size", o.chunkSize).
		Str("tenant_id", opts.TenantID).
		Msg("Starting bulk batch")

	var mu sync.Mutex
	processed := 0

	for start := 0; start < total; start += o.chunkSize {
		end := start + o.chunkSize
		if end > total {
			end = total
		}

		var wg sync.WaitGroup
		for idx := start; idx < end; idx++ {
			wg.Add(1)
			go func(item Item) {
				defer wg.Done()

				done := o.processItem(ctx, item, opts.TenantID)

				mu.Lock()
				replaceByID(items, done)
				processed++
				tick := processed
				mu.Unlock()

				if opts.OnProgress != nil {
					opts.OnProgress(tick, total)
				}
				if opts.OnItemProcessed != nil {
					opts.OnItemProcessed(done)
				}
			}(items[idx])
		}
		wg.Wait()
	}

	o.log.Info().Int("files", total).Msg("Bulk batch completed")
	return items
}

// processItem runs the full pipeline for one file. Any panic or error is
// absorbed into a QrFailed item so the batch keeps going.
func (o *Orchestrator) processItem(ctx context.Context, item Item, tenantID string) (result Item) {
	result = item
	defer func() {
		if r := recover(); r != nil {
			o.log.Error().
				Str("file", item.FileName).
				Interface("panic", r).
				Msg("Item processing panicked")
			result.Status = StatusQRFailed
			result.ErrorMessage = fmt.Sprintf("beklenmeyen hata: %v", r)
			result.Validate()
		}
	}()

	result.Status = StatusProcessing

	raw, err := o.extractor.ExtractFromPDF(ctx, result.FileData)
	if err != nil {
		o.log.Warn().
			Str("file", result.FileName).
			Err(err).
			Msg("QR extraction failed")
		result.Status = StatusQRFailed
		result.ErrorMessage = "QR kod okunamadı"
		result.Validate()
		return result
	}

	data := parser.Parse(raw)
	result.applyQRData(&data)
	result.SupplierName = o.resolveSupplierName(ctx, tenantID, &data)
	result.Status = StatusQRSuccess
	result.Validate()
	return result
}

// resolveSupplierName reconciles the QR-observed supplier name against the
// registry. A stored name wins; any resolver failure falls back to the
// QR-observed name rather than failing the item.
func (o *Orchestrator) resolveSupplierName(ctx context.Context, tenantID string, data *models.InvoiceQRData) string {
	if o.resolver == nil || tenantID == "" || data.TaxID == "" {
		return data.SupplierName
	}

	supplier, err := o.resolver.FindOrCreateSupplier(ctx, tenantID, data.TaxID, data.SupplierName)
	if err != nil {
		o.log.Warn().
			Str("tax_id", data.TaxID).
			Err(err).
			Msg("Supplier resolution failed, using QR-observed name")
		return data.SupplierName
	}
	if supplier.IsPlaceholderName() && data.SupplierName != "" {
		return data.SupplierName
	}
	return supplier.Name
}

// replaceByID writes a completed item back into its slot, matched by id.
func replaceByID(items []Item, done Item) {
	for idx := range items {
		if items[idx].ID == done.ID {
			items[idx] = done
			return
		}
	}
}
