package database

import (
	"context"
	"fmt"
	"time"
)

// InvoiceRecord is the persisted form of a reconciled batch item. Amounts are
// stored canonically (float), not in display format.
type InvoiceRecord struct {
	ID                int64    `db:"id"`
	TenantID          string   `db:"tenant_id"`
	SupplierID        *int64   `db:"supplier_id"`
	InvoiceNumber     string   `db:"invoice_number"`
	InvoiceDate       string   `db:"invoice_date"`
	TaxID             string   `db:"tax_id"`
	SupplierName      string   `db:"supplier_name"`
	GoodsTotal        *float64 `db:"goods_total"`
	VATAmount         *float64 `db:"vat_amount"`
	WithholdingAmount *float64 `db:"withholding_amount"`
	TotalAmount       *float64 `db:"total_amount"`
	Currency          string   `db:"currency"`
	ETTN              string   `db:"ettn"`
	RawQR             string   `db:"raw_qr"`
}

// SaveInvoice inserts one reconciled invoice record. The (tenant, tax id,
// invoice number) key is unique, re-committing the same invoice fails.
func (s *Store) SaveInvoice(ctx context.Context, rec *InvoiceRecord) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (
			tenant_id, supplier_id, invoice_number, invoice_date, tax_id, supplier_name,
			goods_total, vat_amount, withholding_amount, total_amount,
			currency, ettn, raw_qr, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TenantID, rec.SupplierID, rec.InvoiceNumber, rec.InvoiceDate, rec.TaxID, rec.SupplierName,
		rec.GoodsTotal, rec.VATAmount, rec.WithholdingAmount, rec.TotalAmount,
		rec.Currency, rec.ETTN, rec.RawQR, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("SaveInvoice (invoice: %s) failed: %w", rec.InvoiceNumber, err)
	}
	rec.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("SaveInvoice insert id: %w", err)
	}

	s.log.Info().
		Str("tenant_id", rec.TenantID).
		Str("invoice_number", rec.InvoiceNumber).
		Str("tax_id", rec.TaxID).
		Msg("Invoice record saved")
	return nil
}

// CountInvoices returns the number of committed invoices for a tenant.
func (s *Store) CountInvoices(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM invoices WHERE tenant_id = ?`, tenantID)
	if err != nil {
		return 0, fmt.Errorf("CountInvoices failed: %w", err)
	}
	return count, nil
}
