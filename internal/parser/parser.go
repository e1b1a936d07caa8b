// Package parser turns raw e-invoice QR payloads into structured invoice data.
//
// Turkish e-invoice QR codes carry no single canonical encoding. Payloads
// observed in production come in four shapes:
//
//   - key-value tagged text ("VKN: 1234567890 Fatura No: GIB2025...")
//   - pipe-delimited positional records ("1234567890|GIB2025...|10.12.2025|...")
//   - JSON documents (the GIB e-Fatura schema, with integrator-specific keys)
//   - URL query strings (verification links with the fields as parameters)
//
// Parse attempts the schemas in that fixed order and accepts the first one
// that yields an invoice number or a total amount. Parsing is pure and total:
// malformed input never produces an error, at worst the result carries only
// the raw payload.
//
// Amount parsing disambiguates Turkish ("1.180,50") from canonical and
// English-formatted decimals, dates are normalized to ISO (YYYY-MM-DD), and
// withholding (tevkifat) invoices get their withheld amount derived from the
// tax-inclusive and payable totals.
package parser

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"qrfatura/internal/logger"
	"qrfatura/pkg/models"
)

// Parse extracts structured invoice data from a raw QR payload.
//
// Schemas are attempted in fixed order (tagged text, pipe-delimited, JSON,
// URL query); the first schema whose result carries an invoice number or a
// total amount wins. When no schema matches, the returned value contains
// only the raw payload. Parse never fails and is safe to call twice on the
// same input.
func Parse(raw string) models.InvoiceQRData {
	log := logger.WithComponent("qr-parser")

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.InvoiceQRData{}
	}

	schemas := []struct {
		name string
		fn   func(string) models.InvoiceQRData
	}{
		{"tagged-text", parseTaggedText},
		{"pipe-delimited", parsePipeDelimited},
		{"json", parseJSON},
		{"url-query", parseURLQuery},
	}

	for _, schema := range schemas {
		result := schema.fn(raw)
		if result.HasCoreFields() {
			result.RawData = raw
			log.Debug().
				Str("schema", schema.name).
				Str("invoice_number", result.InvoiceNumber).
				Str("tax_id", result.TaxID).
				Msg("QR payload parsed")
			return result
		}
	}

	log.Debug().Int("payload_len", len(raw)).Msg("QR payload matched no schema")
	return models.InvoiceQRData{RawData: raw}
}

// parseTaggedText scans free text for labeled fields. Every label is matched
// independently, so a partial document still yields a partial result.
func parseTaggedText(raw string) models.InvoiceQRData {
	var d models.InvoiceQRData
	for _, field := range taggedFields {
		for _, pattern := range field.patterns {
			m := pattern.FindStringSubmatch(raw)
			if m != nil {
				field.set(&d, m[1])
				break
			}
		}
	}
	deriveWithholding(&d, nil, nil)
	return d
}

var taxIDPattern = regexp.MustCompile(`^\d{10,11}$`)

// parsePipeDelimited reads the fixed positional layout
// taxID|invoiceNumber|date|total|vat, applied only when the payload splits
// into at least three parts and the first part is a 10-11 digit identifier.
func parsePipeDelimited(raw string) models.InvoiceQRData {
	parts := strings.Split(raw, "|")
	if len(parts) < 3 {
		return models.InvoiceQRData{}
	}

	first := strings.TrimSpace(parts[0])
	if !taxIDPattern.MatchString(first) {
		return models.InvoiceQRData{}
	}

	d := models.InvoiceQRData{
		TaxID:         first,
		InvoiceNumber: strings.TrimSpace(parts[1]),
		InvoiceDate:   NormalizeDate(parts[2]),
	}
	if len(parts) > 3 {
		d.TotalAmount = parseAmountPtr(parts[3])
	}
	if len(parts) > 4 {
		d.VATAmount = parseAmountPtr(parts[4])
	}
	return d
}

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// parseJSON handles the GIB e-Fatura JSON schema and integrator variants.
// The payload is sanitized first (embedded newlines, trailing commas before
// closing brackets) because QR encoders are sloppy about both.
func parseJSON(raw string) models.InvoiceQRData {
	sanitized := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(raw)
	sanitized = trailingComma.ReplaceAllString(sanitized, "$1")

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(sanitized), &payload); err != nil {
		// Not this schema, fall through to the next one.
		return models.InvoiceQRData{}
	}

	var d models.InvoiceQRData
	var taxInclusive, payable *float64

	for key, value := range payload {
		text := valueToString(value)
		if text == "" {
			continue
		}

		if matchesAlias(key, taxInclusiveAliases) {
			taxInclusive = parseAmountPtr(text)
		}
		if matchesAlias(key, payableAliases) {
			payable = parseAmountPtr(text)
		}

		for _, field := range keyedFields {
			if matchesAlias(key, field.aliases) {
				field.set(&d, text)
				break
			}
		}
	}

	deriveWithholding(&d, taxInclusive, payable)
	return d
}

// parseURLQuery reads known parameter names from verification-link payloads.
func parseURLQuery(raw string) models.InvoiceQRData {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return models.InvoiceQRData{}
	}
	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return models.InvoiceQRData{}
	}

	var d models.InvoiceQRData
	var taxInclusive, payable *float64

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		text := vals[0]

		if matchesAlias(key, taxInclusiveAliases) {
			taxInclusive = parseAmountPtr(text)
		}
		if matchesAlias(key, payableAliases) {
			payable = parseAmountPtr(text)
		}

		for _, field := range keyedFields {
			if matchesAlias(key, field.aliases) {
				field.set(&d, text)
				break
			}
		}
	}

	deriveWithholding(&d, taxInclusive, payable)
	return d
}

// deriveWithholding applies the tevkifat rule: when the scenario or type tag
// marks a withholding invoice and both the tax-inclusive and payable totals
// are known, the withheld amount is their difference and the payable figure
// replaces the total.
func deriveWithholding(d *models.InvoiceQRData, taxInclusive, payable *float64) {
	if !isWithholdingInvoice(d) {
		return
	}
	if taxInclusive == nil || payable == nil {
		return
	}
	withheld := *taxInclusive - *payable
	d.WithholdingAmount = &withheld
	d.TotalAmount = payable
}

func isWithholdingInvoice(d *models.InvoiceQRData) bool {
	return strings.Contains(d.Type, "TEVKIFAT") || strings.Contains(d.Scenario, "TEVKIFAT")
}

func valueToString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		// JSON numbers arrive as float64; print without exponent notation.
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		return ""
	}
}
