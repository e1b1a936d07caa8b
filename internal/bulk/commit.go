package bulk

import (
	"context"

	"qrfatura/internal/database"
)

// InvoiceSink persists the derived invoice record of a committed item.
// Implemented by database.Store.
type InvoiceSink interface {
	SaveInvoice(ctx context.Context, rec *database.InvoiceRecord) error
}

// CommitBatch persists every valid item's derived invoice record and returns
// the updated list. Per item: Ready fields are frozen, status moves through
// Saving to Success, or to Error with a message when the insert fails. A
// failing item never stops the rest of the batch. Items that are invalid or
// already committed are skipped.
func (o *Orchestrator) CommitBatch(ctx context.Context, items []Item, tenantID string) []Item {
	out := make([]Item, len(items))
	copy(out, items)

	for idx := range out {
		item := &out[idx]
		if !item.IsValid || item.Status == StatusSuccess {
			continue
		}

		item.Status = StatusSaving

		if o.sink == nil {
			item.Status = StatusError
			item.ErrorMessage = "kayıt deposu yapılandırılmamış"
			continue
		}

		rec := o.buildInvoiceRecord(ctx, item, tenantID)
		if err := o.sink.SaveInvoice(ctx, rec); err != nil {
			o.log.Error().
				Str("invoice_number", item.InvoiceNumber).
				Err(err).
				Msg("Invoice commit failed")
			item.Status = StatusError
			item.ErrorMessage = "fatura kaydedilemedi"
			continue
		}

		item.Status = StatusSuccess
		item.ErrorMessage = ""
	}

	return out
}

func (o *Orchestrator) buildInvoiceRecord(ctx context.Context, item *Item, tenantID string) *database.InvoiceRecord {
	rec := &database.InvoiceRecord{
		TenantID:      tenantID,
		InvoiceNumber: item.InvoiceNumber,
		InvoiceDate:   item.InvoiceDate,
		TaxID:         item.TaxID,
		SupplierName:  item.SupplierName,
	}

	if v, ok := item.AmountValue(item.GoodsTotal); ok {
		rec.GoodsTotal = &v
	}
	if v, ok := item.AmountValue(item.VATAmount); ok {
		rec.VATAmount = &v
	}
	if v, ok := item.AmountValue(item.WithholdingAmount); ok {
		rec.WithholdingAmount = &v
	}
	if v, ok := item.AmountValue(item.TotalAmount); ok {
		rec.TotalAmount = &v
	}

	if item.QR != nil {
		rec.Currency = item.QR.Currency
		rec.ETTN = item.QR.ETTN
		rec.RawQR = item.QR.RawData
	}

	if o.resolver != nil && item.TaxID != "" {
		if supplier, err := o.resolver.FindOrCreateSupplier(ctx, tenantID, item.TaxID, item.SupplierName); err == nil {
			rec.SupplierID = &supplier.ID
		} else {
			o.log.Warn().
				Str("tax_id", item.TaxID).
				Err(err).
				Msg("Supplier resolution failed during commit")
		}
	}

	return rec
}
