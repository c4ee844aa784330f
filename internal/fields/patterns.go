// Package fields extracts typed, confidence-scored field values from the
// text of a detected document. Every field carries an ordered candidate
// pattern list; earlier patterns are more specific and earn higher
// confidence.
package fields

import (
	"regexp"

	"github.com/seongmin-k/tradescan/internal/document"
)

// valueKind selects the normalization applied to a raw match.
type valueKind int

const (
	kindText valueKind = iota
	kindNumeric
	kindDate
)

// fieldSpec describes one extractable field: its candidate patterns in
// priority order, the base confidence of the first pattern, and how the
// matched text is normalized.
type fieldSpec struct {
	name     string
	base     float64
	kind     valueKind
	maxLen   int  // 0 means unbounded
	ellipsis bool // append "..." when truncated
	patterns []*regexp.Regexp
}

func res(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// fieldTables is the per-type extraction knowledge base. Order inside a
// table fixes the output iteration order; order inside a pattern list
// fixes the confidence ranking.
var fieldTables = map[document.DocType][]fieldSpec{
	document.DocTypeInvoice: {
		{name: "invoice_number", base: 0.9, patterns: res(
			`(?i)invoice\s*(?:no\.?|number)?\s*:?\s*([A-Z][A-Z0-9-]+|\d[A-Z0-9-]+)`,
			`(?i)송품장\s*번호\s*:?\s*([A-Z0-9-]+)`,
			`(?i)commercial\s*invoice\s*(?:no\.?)?\s*:?\s*([A-Z0-9-]+)`,
		)},
		{name: "description", base: 0.8, maxLen: 50, ellipsis: true, patterns: res(
			`(?i)description\s*of\s*goods?\s*:?\s*([^\n]{1,100})`,
			`품목\s*:?\s*([^\n]{1,100})`,
			`(?i)commodity\s*:?\s*([^\n]{1,100})`,
		)},
		{name: "bl_number", base: 0.9, patterns: res(
			`(?i)b/?l\s*(?:no\.?)?\s*:?\s*([A-Z]{2,4}\d{6,12})`,
			`(?i)bill\s*of\s*lading\s*(?:no\.?)?\s*:?\s*([A-Z]{2,4}\d{6,12})`,
		)},
		{name: "container_number", base: 0.9, patterns: res(
			`(?i)container\s*(?:no\.?)?\s*:?\s*([A-Z]{4}\d{7})`,
		)},
		{name: "gross_weight", base: 0.8, kind: kindNumeric, patterns: res(
			`(?i)gross\s*weight\s*:?\s*([0-9,]+\.?\d*)\s*kgs?`,
			`(?i)weight\s*:?\s*([0-9,]+\.?\d*)\s*kgs?`,
			`(?i)총\s*중량\s*:?\s*([0-9,]+\.?\d*)\s*kgs?`,
		)},
		{name: "krw_amount", base: 0.8, kind: kindNumeric, patterns: res(
			`원화\s*공급가\s*:?\s*₩?\s*([0-9,]+)`,
			`(?i)krw\s*amount\s*:?\s*₩?\s*([0-9,]+)`,
			`₩\s*([0-9,]+)`,
		)},
		{name: "vat_amount", base: 0.8, kind: kindNumeric, patterns: res(
			`(?i)v\.?a\.?t\.?\s*:?\s*₩?\s*([0-9,]+)`,
			`부가세\s*:?\s*₩?\s*([0-9,]+)`,
			`부가가치세\s*:?\s*₩?\s*([0-9,]+)`,
		)},
		{name: "port_of_loading", base: 0.8, patterns: res(
			`(?i)port\s*of\s*loading\s*:?\s*([A-Z][^,\n]{1,30})`,
			`(?i)p\.?o\.?l\.?\s*:?\s*([A-Z][^,\n]{1,30})`,
			`출발지\s*:?\s*([^,\n]{1,30})`,
		)},
		{name: "port_of_discharge", base: 0.8, patterns: res(
			`(?i)port\s*of\s*discharge\s*:?\s*([A-Z][^,\n]{1,30})`,
			`(?i)p\.?o\.?d\.?\s*:?\s*([A-Z][^,\n]{1,30})`,
			`도착지\s*:?\s*([^,\n]{1,30})`,
		)},
	},
	document.DocTypeTaxInvoice: {
		{name: "tax_invoice_number", base: 0.9, patterns: res(
			`(?i)(?:세금계산서|tax\s*invoice).*?번호.*?([0-9][0-9-]*)`,
			`계산서.*?번호.*?([0-9][0-9-]*)`,
		)},
		{name: "supply_amount", base: 0.9, kind: kindNumeric, patterns: res(
			`공급가액\s*:?\s*(₩?\s*[\d,]+)`,
			`공급.*?가액.*?(₩?\s*[\d,]+)`,
		)},
		{name: "tax_amount", base: 0.9, kind: kindNumeric, patterns: res(
			`세액\s*:?\s*(₩?\s*[\d,]+)`,
			`부가세\s*:?\s*(₩?\s*[\d,]+)`,
		)},
		{name: "total_amount", base: 0.9, kind: kindNumeric, patterns: res(
			`합계.*?(₩?\s*[\d,]+)`,
			`총.*?금액.*?(₩?\s*[\d,]+)`,
		)},
		{name: "issue_date", base: 0.8, kind: kindDate, patterns: res(
			`(\d{4}[-./년]\s*\d{1,2}[-./월]\s*\d{1,2}[일]?)`,
		)},
		{name: "supplier_name", base: 0.8, patterns: res(
			`공급자.*?상호\s*:?\s*([^\n]+)`,
		)},
		{name: "buyer_name", base: 0.8, patterns: res(
			`공급받는자.*?상호\s*:?\s*([^\n]+)`,
		)},
	},
	document.DocTypeBillOfLading: {
		{name: "bl_number", base: 0.9, maxLen: 20, patterns: res(
			`(?i)(?:b/?l\s*no|bill\s*of\s*lading\s*no)\.?\s*:?\s*([A-Z0-9-]+)`,
			`(?i)b/?l\s*:?\s*([A-Z0-9-]+)`,
		)},
		{name: "vessel_name", base: 0.8, maxLen: 50, patterns: res(
			`(?i)(?:vessel\s*(?:name)?|선박명)\s*:?\s*([A-Z][A-Z ]*[A-Z])`,
			`(?i)m/?v\s+([A-Z][A-Z ]*[A-Z])`,
		)},
		{name: "voyage_number", base: 0.8, maxLen: 20, patterns: res(
			`(?i)(?:voyage|항차)\s*(?:no\.?)?\s*:?\s*([A-Z0-9]+)`,
			`(?i)voy\.?\s*:?\s*([A-Z0-9]+)`,
		)},
		{name: "port_of_loading", base: 0.8, maxLen: 50, patterns: res(
			`(?i)port\s*of\s*loading\s*:?\s*([A-Z][A-Z ,]*[A-Z])`,
			`(?i)(busan|incheon|부산|인천)`,
		)},
		{name: "port_of_discharge", base: 0.8, maxLen: 50, patterns: res(
			`(?i)port\s*of\s*discharge\s*:?\s*([A-Z][A-Z ,]*[A-Z])`,
			`(?i)(keelung|taipei|기륭|타이페이)`,
		)},
		{name: "gross_weight", base: 0.8, kind: kindNumeric, patterns: res(
			`(?i)gross\s*weight\s*:?\s*([\d,]+\.?\d*)`,
			`(?i)([\d,]+\.?\d*)\s*kgs?\b`,
		)},
		{name: "container_number", base: 0.9, patterns: res(
			`(?i)(?:container|컨테이너)\s*(?:no\.?)?\s*:?\s*([A-Z]{4}\d{7})`,
			`\b([A-Z]{4}\d{7})\b`,
		)},
	},
	document.DocTypeExportDeclaration: {
		{name: "declaration_number", base: 0.9, patterns: res(
			`신고번호\s*:?\s*(\d{5}-\d{2}-\d{6}[A-Z]?)`,
			`(\d{5}-\d{2}-\d{6}[A-Z]?)`,
		)},
		{name: "invoice_symbol", base: 0.8, patterns: res(
			`(?i)송품장\s*부호\s*:?\s*([A-Z0-9-]+)`,
			`(?i)송품장번호\s*:?\s*([A-Z0-9-]+)`,
		)},
		{name: "destination_country", base: 0.9, patterns: res(
			`목적국\s*:?\s*([A-Z]{2,3})\b`,
		)},
		{name: "loading_port", base: 0.8, patterns: res(
			`적재항\s*:?\s*([A-Z]{5})\b`,
		)},
		{name: "hs_code", base: 0.8, patterns: res(
			`세번부호\s*([0-9]{4}\.?[0-9]{2}\.?[0-9]{2})`,
			`세번\s*([0-9]{4}\.?[0-9]{2}\.?[0-9]{2})`,
			`(?i)hs.*?([0-9]{4}\.?[0-9]{2}\.?[0-9]{2})`,
		)},
		{name: "gross_weight", base: 0.8, kind: kindNumeric, patterns: res(
			`(?i)총\s*중량\s*:?\s*([0-9,]+\.?\d*)\s*kg`,
			`(?i)중량\s*:?\s*([0-9,]+\.?\d*)\s*kg`,
		)},
		{name: "container_number", base: 0.9, patterns: res(
			`\b([A-Z]{4}\d{7})\b`,
		)},
	},
	document.DocTypeRemittanceAdvice: {
		{name: "approval_number", base: 0.9, patterns: res(
			`승인번호\s*:?\s*([0-9][0-9-]*)`,
		)},
		{name: "transfer_amount", base: 0.9, kind: kindNumeric, patterns: res(
			`송금\s*금액\s*:?\s*([₩$]?\s*[0-9,]+)`,
			`금액\s*:?\s*([₩$]?\s*[0-9,]+)`,
		)},
		{name: "bank_name", base: 0.8, patterns: res(
			`은행명?\s*:?\s*([^\n]+)`,
		)},
		{name: "account_number", base: 0.9, patterns: res(
			`(\d{3,4}-\d{2,4}-\d{4,8})`,
		)},
		{name: "transfer_date", base: 0.8, kind: kindDate, patterns: res(
			`(\d{4}[-./년]\s*\d{1,2}[-./월]\s*\d{1,2}[일]?)`,
		)},
		{name: "supplier_name", base: 0.9, patterns: res(
			`예금주\s*:?\s*([^\n]+)`,
			`수신자\s*:?\s*([^\n]+)`,
			`받는\s*사람\s*:?\s*([^\n]+)`,
			`입금\s*받는\s*자\s*:?\s*([^\n]+)`,
		)},
	},
}

// identifierPatterns find the document's own number for boundary merge
// decisions. Only the genuinely multi-page types carry one.
var identifierPatterns = map[document.DocType][]*regexp.Regexp{
	document.DocTypeBillOfLading: res(
		`(?i)(?:b/?l\s*no|bill\s*of\s*lading\s*no)\.?\s*:?\s*([A-Z0-9-]+)`,
	),
	document.DocTypeExportDeclaration: res(
		`신고번호\s*:?\s*(\d{5}-\d{2}-\d{6}[A-Z]?)`,
		`(\d{5}-\d{2}-\d{6}[A-Z]?)`,
	),
}
