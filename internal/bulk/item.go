package bulk

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"qrfatura/internal/parser"
	"qrfatura/pkg/models"
)

// Status is the processing state of one batch item.
type Status string

const (
	StatusPending     Status = "pending"
	StatusProcessing  Status = "processing"
	StatusQRSuccess   Status = "qr_success"
	StatusQRFailed    Status = "qr_failed"
	StatusManualEntry Status = "manual_entry"
	StatusReady       Status = "ready"
	StatusSaving      Status = "saving"
	StatusSuccess     Status = "success"
	StatusError       Status = "error"
)

// Item is one row of a working batch: an uploaded PDF plus the extracted,
// user-editable invoice fields. Monetary fields are held as comma-decimal
// display strings for direct editing; AmountValue converts back on demand.
//
// Items live only for the duration of a batch session. Only the derived
// invoice record is persisted on commit, never the item itself.
type Item struct {
	// ID is a batch-local synthetic identity, stable for the session.
	ID string `json:"id"`

	FileName string `json:"file_name"`
	FileData []byte `json:"-"`

	Status Status `json:"status"`

	// Extracted / editable fields.
	InvoiceNumber     string `json:"invoice_number"`
	InvoiceDate       string `json:"invoice_date"` // ISO YYYY-MM-DD
	SupplierName      string `json:"supplier_name"`
	TaxID             string `json:"tax_id"`
	GoodsTotal        string `json:"goods_total"`
	VATAmount         string `json:"vat_amount"`
	WithholdingAmount string `json:"withholding_amount"`
	TotalAmount       string `json:"total_amount"`

	// TotalFromQR guards the total against recomputation: a QR-sourced total
	// is never auto-overwritten.
	TotalFromQR bool `json:"total_from_qr"`

	IsValid          bool     `json:"is_valid"`
	ValidationErrors []string `json:"validation_errors"`

	ErrorMessage string `json:"error_message,omitempty"`

	// QR retains the full parse result for traceability (currency, scenario,
	// type and ETTN metadata not otherwise surfaced).
	QR *models.InvoiceQRData `json:"qr,omitempty"`
}

// NewItem creates a pending item for one uploaded file.
func NewItem(fileName string, data []byte) Item {
	return Item{
		ID:       uuid.NewString(),
		FileName: fileName,
		FileData: data,
		Status:   StatusPending,
	}
}

// applyQRData populates the editable fields from a parse result.
func (i *Item) applyQRData(d *models.InvoiceQRData) {
	i.QR = d
	i.InvoiceNumber = d.InvoiceNumber
	i.InvoiceDate = d.InvoiceDate
	i.SupplierName = d.SupplierName
	i.TaxID = d.TaxID

	if d.GoodsTotal != nil {
		i.GoodsTotal = parser.FormatAmount(*d.GoodsTotal)
	}
	if d.VATAmount != nil {
		i.VATAmount = parser.FormatAmount(*d.VATAmount)
	}
	if d.WithholdingAmount != nil {
		i.WithholdingAmount = parser.FormatAmount(*d.WithholdingAmount)
	}
	if d.TotalAmount != nil {
		i.TotalAmount = parser.FormatAmount(*d.TotalAmount)
		i.TotalFromQR = true
	} else {
		i.RecomputeTotal()
	}
}

// AmountValue converts one of the display-formatted amount fields back to a
// canonical float. Empty fields yield (0, false).
func (i *Item) AmountValue(field string) (float64, bool) {
	if strings.TrimSpace(field) == "" {
		return 0, false
	}
	v, err := parser.ParseAmount(field)
	if err != nil {
		return 0, false
	}
	return v, true
}

// RecomputeTotal derives the total payable amount as goods/services subtotal
// plus VAT minus withholding. A QR-sourced total is left untouched, and
// without a subtotal or VAT figure there is nothing to derive from, so an
// explicitly entered total also survives unrelated edits.
func (i *Item) RecomputeTotal() {
	if i.TotalFromQR {
		return
	}

	goods, hasGoods := i.AmountValue(i.GoodsTotal)
	vat, hasVAT := i.AmountValue(i.VATAmount)
	withholding, _ := i.AmountValue(i.WithholdingAmount)

	if !hasGoods && !hasVAT {
		return
	}
	i.TotalAmount = parser.FormatAmount(goods + vat - withholding)
}

// ApplyEdit applies a user mutation to the item, then recomputes the derived
// total, revalidates, and moves the item to Ready or ManualEntry.
func (i *Item) ApplyEdit(mutate func(*Item)) {
	mutate(i)
	i.RecomputeTotal()
	i.Validate()
	i.refreshReadiness()
}

var taxIDShape = regexp.MustCompile(`^\d{10,11}$`)

// Validation messages surfaced directly in the UI.
const (
	errInvoiceNumberRequired = "Fatura numarası gerekli"
	errInvoiceDateRequired   = "Fatura tarihi gerekli"
	errSupplierNameRequired  = "Tedarikçi ünvanı gerekli"
	errTaxIDRequired         = "VKN/TCKN gerekli"
	errTaxIDShape            = "VKN/TCKN 10 veya 11 haneli olmalı"
	errAmountRequired        = "Toplam tutar veya mal/hizmet toplamı gerekli"
)

// Validate recomputes IsValid and the ordered ValidationErrors list. It is
// called after every field mutation; failing checks are never errors in the
// Go sense, they accumulate for the UI.
func (i *Item) Validate() {
	var errs []string

	if strings.TrimSpace(i.InvoiceNumber) == "" {
		errs = append(errs, errInvoiceNumberRequired)
	}
	if strings.TrimSpace(i.InvoiceDate) == "" {
		errs = append(errs, errInvoiceDateRequired)
	}
	if strings.TrimSpace(i.SupplierName) == "" {
		errs = append(errs, errSupplierNameRequired)
	}
	if taxID := strings.TrimSpace(i.TaxID); taxID == "" {
		errs = append(errs, errTaxIDRequired)
	} else if !taxIDShape.MatchString(taxID) {
		errs = append(errs, errTaxIDShape)
	}
	if strings.TrimSpace(i.TotalAmount) == "" && strings.TrimSpace(i.GoodsTotal) == "" {
		errs = append(errs, errAmountRequired)
	}

	i.ValidationErrors = errs
	i.IsValid = len(errs) == 0
}

// refreshReadiness moves an edited item into Ready or ManualEntry. Terminal
// and in-flight save states are left alone.
func (i *Item) refreshReadiness() {
	switch i.Status {
	case StatusSaving, StatusSuccess, StatusError, StatusPending, StatusProcessing:
		return
	}
	if i.IsValid {
		i.Status = StatusReady
	} else {
		i.Status = StatusManualEntry
	}
}
