package parser

import (
	"regexp"
	"strings"

	"qrfatura/pkg/models"
)

// Field extraction is table-driven: each target field carries an ordered list
// of label aliases (or label regexes for free-text payloads) and a setter.
// Schemas share the alias tables so a new synonym is added in exactly one
// place.

type fieldSetter func(d *models.InvoiceQRData, value string)

func setTaxID(d *models.InvoiceQRData, v string) {
	if d.TaxID == "" {
		d.TaxID = strings.TrimSpace(v)
	}
}

func setBuyerTaxID(d *models.InvoiceQRData, v string) {
	if d.BuyerTaxID == "" {
		d.BuyerTaxID = strings.TrimSpace(v)
	}
}

func setInvoiceNumber(d *models.InvoiceQRData, v string) {
	if d.InvoiceNumber == "" {
		d.InvoiceNumber = strings.TrimSpace(v)
	}
}

func setInvoiceDate(d *models.InvoiceQRData, v string) {
	if d.InvoiceDate == "" {
		d.InvoiceDate = NormalizeDate(v)
	}
}

func setScenario(d *models.InvoiceQRData, v string) {
	if d.Scenario == "" {
		d.Scenario = strings.ToUpper(strings.TrimSpace(v))
	}
}

func setType(d *models.InvoiceQRData, v string) {
	if d.Type == "" {
		d.Type = strings.ToUpper(strings.TrimSpace(v))
	}
}

func setCurrency(d *models.InvoiceQRData, v string) {
	if d.Currency == "" {
		d.Currency = strings.ToUpper(strings.TrimSpace(v))
	}
}

func setTotalAmount(d *models.InvoiceQRData, v string) {
	if d.TotalAmount == nil {
		d.TotalAmount = parseAmountPtr(v)
	}
}

func setVATAmount(d *models.InvoiceQRData, v string) {
	if d.VATAmount == nil {
		d.VATAmount = parseAmountPtr(v)
	}
}

func setGoodsTotal(d *models.InvoiceQRData, v string) {
	if d.GoodsTotal == nil {
		d.GoodsTotal = parseAmountPtr(v)
	}
}

func setWithholdingAmount(d *models.InvoiceQRData, v string) {
	if d.WithholdingAmount == nil {
		d.WithholdingAmount = parseAmountPtr(v)
	}
}

func setSupplierName(d *models.InvoiceQRData, v string) {
	if d.SupplierName == "" {
		d.SupplierName = strings.TrimSpace(v)
	}
}

func setETTN(d *models.InvoiceQRData, v string) {
	if d.ETTN == "" {
		d.ETTN = strings.TrimSpace(v)
	}
}

// keyedField maps structured-payload keys (JSON members, URL query params)
// to a field setter. Keys are compared case-insensitively after stripping a
// parenthesized suffix, so "hesaplananKDV(20)" matches the "hesaplanankdv"
// alias by prefix (the suffix is a VAT rate category).
type keyedField struct {
	aliases []string
	set     fieldSetter
}

var keyedFields = []keyedField{
	{[]string{"vkn", "vergino", "vergi_no", "vkntckn", "saticivkn", "satıcıvkn", "tckn"}, setTaxID},
	{[]string{"avkn", "alicivkn", "alıcıvkn", "alicitckn", "alici_vkn", "musterivkn"}, setBuyerTaxID},
	{[]string{"no", "faturano", "fatura_no", "belgeno", "invoiceno", "invoice_no"}, setInvoiceNumber},
	{[]string{"tarih", "faturatarihi", "fatura_tarihi", "duzenlemetarihi", "date"}, setInvoiceDate},
	{[]string{"senaryo", "scenario"}, setScenario},
	{[]string{"tip", "tur", "faturatipi", "type"}, setType},
	{[]string{"parabirimi", "para_birimi", "dovizkodu", "currency"}, setCurrency},
	{[]string{"toplamtutar", "tutar", "toplam", "geneltoplam", "odenecek", "odenecektutar", "total"}, setTotalAmount},
	{[]string{"kdv", "hesaplanankdv", "kdvtutari", "toplamkdv", "vat"}, setVATAmount},
	{[]string{"malhizmettoplam", "malhizmettoplamtutari", "matrah", "aratoplam", "subtotal"}, setGoodsTotal},
	{[]string{"tevkifat", "tevkifattutari", "kdvtevkifat"}, setWithholdingAmount},
	{[]string{"unvan", "saticiunvan", "satici", "firmaadi", "gonderen", "suppliername"}, setSupplierName},
	{[]string{"ettn", "uuid", "belgeuuid"}, setETTN},
}

// Keys of structured payloads that feed the withholding derivation rather
// than a field directly.
var (
	taxInclusiveAliases = []string{"vergidahil", "vergidahiltutar", "vergilerdahiltoplamtutar"}
	payableAliases      = []string{"odenecek", "odenecektutar"}
)

var parenSuffix = regexp.MustCompile(`\(.*\)$`)

func normalizeKey(key string) string {
	key = strings.TrimSpace(strings.ToLower(key))
	return parenSuffix.ReplaceAllString(key, "")
}

func matchesAlias(key string, aliases []string) bool {
	k := normalizeKey(key)
	for _, a := range aliases {
		if k == a {
			return true
		}
	}
	return false
}

// taggedField scans free-text payloads ("VKN: 1234567890 TUTAR: 1.180,50")
// for a labeled value. Each pattern captures the value in group 1 and is
// matched independently, so partial documents still yield partial results.
type taggedField struct {
	patterns []*regexp.Regexp
	set      fieldSetter
}

const (
	reAmount = `([0-9][0-9.,]*)`
	reDate   = `([0-9]{1,4}[./-][0-9]{1,2}[./-][0-9]{2,4})`
)

var taggedFields = []taggedField{
	{compilePatterns(
		`(?i)\b(?:vkn|tckn|vergi\s*no|vergino|vkntckn)\s*[:=]?\s*(\d{10,11})\b`,
	), setTaxID},
	{compilePatterns(
		`(?i)\b(?:alıcı|alici|müşteri|musteri)\s*(?:vkn|tckn|vergi\s*no)\s*[:=]?\s*(\d{10,11})\b`,
	), setBuyerTaxID},
	{compilePatterns(
		`(?i)\b(?:fatura\s*no|belge\s*no|invoice\s*no)\s*[:=]?\s*([A-Za-z0-9][A-Za-z0-9/-]+)`,
	), setInvoiceNumber},
	{compilePatterns(
		`(?i)\b(?:fatura\s*tarihi|düzenleme\s*tarihi|duzenleme\s*tarihi|tarih|date)\s*[:=]?\s*`+reDate,
	), setInvoiceDate},
	{compilePatterns(
		`(?i)\bsenaryo\s*[:=]?\s*([A-Za-zÇĞİÖŞÜçğıöşü]+)`,
	), setScenario},
	{compilePatterns(
		`(?i)\b(?:fatura\s*tipi|tip)\s*[:=]?\s*([A-Za-zÇĞİÖŞÜçğıöşü]+)`,
	), setType},
	{compilePatterns(
		`(?i)\b(?:para\s*birimi|döviz|doviz)\s*[:=]?\s*([A-Za-z]{3})\b`,
	), setCurrency},
	{compilePatterns(
		`(?i)\b(?:toplam\s*tutar|genel\s*toplam|ödenecek\s*tutar|odenecek\s*tutar|tutar|toplam|total)\s*[:=]?\s*`+reAmount,
	), setTotalAmount},
	{compilePatterns(
		`(?i)\b(?:hesaplanan\s*kdv|toplam\s*kdv|kdv\s*tutarı|kdv\s*tutari|kdv)\s*[:=]?\s*`+reAmount,
	), setVATAmount},
	{compilePatterns(
		`(?i)\b(?:mal\s*hizmet\s*toplam(?:\s*tutar[ıi]?)?|matrah|ara\s*toplam)\s*[:=]?\s*`+reAmount,
	), setGoodsTotal},
	{compilePatterns(
		`(?i)\btevkifat(?:\s*tutarı|\s*tutari)?\s*[:=]?\s*`+reAmount,
	), setWithholdingAmount},
	{compilePatterns(
		`(?i)\b(?:ünvan|unvan|firma\s*adı|firma\s*adi|satıcı|satici)\s*[:=]\s*([^\r\n|;]+)`,
	), setSupplierName},
	{compilePatterns(
		`(?i)\bettn\s*[:=]?\s*([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})`,
	), setETTN},
}

func compilePatterns(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}
