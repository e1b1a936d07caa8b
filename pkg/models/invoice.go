package models

import "time"

// InvoiceQRData is the structured result of parsing one e-invoice QR payload.
//
// QR payloads in the wild come in several shapes (tagged text, pipe-delimited,
// JSON, URL query), so every field is optional. Amount fields are nil when the
// payload did not carry them. The value is constructed once per successful
// parse and never mutated afterwards; RawData always retains the original
// payload for audit and debugging.
type InvoiceQRData struct {
	// TaxID is the supplier VKN (10 digits, corporate) or TCKN (11 digits, individual).
	TaxID string `json:"tax_id,omitempty"`

	// BuyerTaxID is the buyer-side VKN/TCKN when present.
	BuyerTaxID string `json:"buyer_tax_id,omitempty"`

	InvoiceNumber string `json:"invoice_number,omitempty"`

	// InvoiceDate is normalized to ISO format (YYYY-MM-DD).
	InvoiceDate string `json:"invoice_date,omitempty"`

	// Scenario is the e-invoice scenario tag (TEMELFATURA, TICARIFATURA, ...).
	Scenario string `json:"scenario,omitempty"`

	// Type is the invoice type tag (SATIS, IADE, TEVKIFAT, ...).
	Type string `json:"type,omitempty"`

	// Currency is the ISO currency code (TRY, EUR, USD, ...).
	Currency string `json:"currency,omitempty"`

	// TotalAmount is the total payable amount. For withholding (tevkifat)
	// invoices this is the payable figure, not the tax-inclusive total.
	TotalAmount *float64 `json:"total_amount,omitempty"`

	// VATAmount is the computed VAT total.
	VATAmount *float64 `json:"vat_amount,omitempty"`

	// GoodsTotal is the goods/services subtotal before VAT.
	GoodsTotal *float64 `json:"goods_total,omitempty"`

	// WithholdingAmount is the withheld tax portion. For tevkifat invoices it
	// is derived as tax-inclusive total minus payable total.
	WithholdingAmount *float64 `json:"withholding_amount,omitempty"`

	// SupplierName is the supplier display name (ünvan) as printed in the QR.
	SupplierName string `json:"supplier_name,omitempty"`

	// ETTN is the document UUID uniquely identifying the e-invoice.
	ETTN string `json:"ettn,omitempty"`

	// RawData is the original decoded QR string, always retained.
	RawData string `json:"raw_data"`
}

// HasCoreFields reports whether the parse produced at least one of the fields
// used to decide schema acceptance (invoice number or total amount).
func (d *InvoiceQRData) HasCoreFields() bool {
	return d.InvoiceNumber != "" || d.TotalAmount != nil
}

// Supplier classification values.
const (
	ClassificationPending        = "pending"
	ClassificationSubcontractor  = "subcontractor"
	ClassificationInvoiceCompany = "invoice-company"
)

// PlaceholderSupplierName is the sentinel stored for suppliers created before
// a real name was known. A stored placeholder never wins over a freshly
// observed name; the literal must not change, rename guards compare against it.
const PlaceholderSupplierName = "Bilinmeyen Tedarikçi"

// Supplier is a tax-identifier-keyed supplier/subcontractor record, scoped to
// a tenant (firm).
type Supplier struct {
	ID             int64     `json:"id" db:"id"`
	TenantID       string    `json:"tenant_id" db:"tenant_id"`
	TaxID          string    `json:"tax_id" db:"tax_id"`
	Name           string    `json:"name" db:"name"`
	Classification string    `json:"classification" db:"classification"`
	Active         bool      `json:"active" db:"active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// IsPlaceholderName reports whether the stored display name is the
// "unknown supplier" sentinel.
func (s *Supplier) IsPlaceholderName() bool {
	return s.Name == PlaceholderSupplierName
}
