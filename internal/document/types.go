// Package document defines the data model shared across the pipeline:
// document types, extraction engines, page scores, detected spans, and the
// stable ProcessingResult JSON contract consumed by downstream exporters.
package document

import "time"

// DocType identifies a supported trade document type.
// The set is closed: switches over DocType should enumerate AllDocTypes
// so that adding a type is a compile-visible change.
type DocType string

const (
	DocTypeInvoice           DocType = "invoice"
	DocTypeTaxInvoice        DocType = "tax_invoice"
	DocTypeBillOfLading      DocType = "bill_of_lading"
	DocTypeExportDeclaration DocType = "export_declaration"
	DocTypeRemittanceAdvice  DocType = "remittance_advice"
	DocTypeUnknown           DocType = "unknown"
)

// AllDocTypes lists every detectable document type, in scoring order.
// DocTypeUnknown is deliberately excluded: it is a result of no detection,
// never a candidate.
var AllDocTypes = []DocType{
	DocTypeInvoice,
	DocTypeTaxInvoice,
	DocTypeBillOfLading,
	DocTypeExportDeclaration,
	DocTypeRemittanceAdvice,
}

// Valid reports whether t is a known detectable document type.
func (t DocType) Valid() bool {
	for _, dt := range AllDocTypes {
		if t == dt {
			return true
		}
	}
	return false
}

// Engine identifies a text extraction provider.
type Engine string

const (
	EngineUpstage   Engine = "upstage"   // cloud document-AI
	EngineNative    Engine = "native"    // embedded text layer
	EngineLayout    Engine = "layout"    // row-ordered text layer
	EngineTesseract Engine = "tesseract" // local OCR
)

// DefaultEngineOrder is the fallback priority when no preference is given:
// cloud document-AI first, cheap local readers next, OCR last.
var DefaultEngineOrder = []Engine{
	EngineUpstage,
	EngineNative,
	EngineLayout,
	EngineTesseract,
}

// ParseEngine maps a user-supplied engine name to an Engine.
func ParseEngine(s string) (Engine, bool) {
	switch Engine(s) {
	case EngineUpstage, EngineNative, EngineLayout, EngineTesseract:
		return Engine(s), true
	}
	return "", false
}

// Status is the lifecycle state of a ProcessingResult.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusPartial    Status = "partial"
)

// Terminal reports whether the status is final. A terminal result must not
// be mutated further.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusPartial
}

// PageText is one page of provider output, 1-indexed.
type PageText struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// ExtractedField is a single typed datum pulled out of a document.
// Confidence is monotonically non-increasing with PatternRank for a given
// field within one extraction call. Immutable after creation.
type ExtractedField struct {
	// Value is a string for text fields and a float64 for numeric fields.
	Value       any     `json:"value"`
	Confidence  float64 `json:"confidence"`
	SourcePage  int     `json:"source_page"`
	Engine      Engine  `json:"engine"`
	PatternRank int     `json:"pattern_rank"`
}

// ScoreEntry is one document type's score for a single page.
type ScoreEntry struct {
	Score           int      `json:"score"`
	Excluded        bool     `json:"excluded"`
	MatchedPatterns []string `json:"matched_patterns,omitempty"`
	MeetsThreshold  bool     `json:"meets_threshold"`
}

// PageScore holds the per-type scores computed for one page. Created once
// during classification and never mutated afterward.
type PageScore struct {
	PageNumber int                   `json:"page_number"`
	Scores     map[DocType]ScoreEntry `json:"scores"`
}

// PageRange is an inclusive 1-indexed page interval. Start <= End.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Pages returns the number of pages covered by the range.
func (r PageRange) Pages() int { return r.End - r.Start + 1 }

// Overlaps reports whether two ranges share at least one page.
func (r PageRange) Overlaps(o PageRange) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// DocumentSpan is a contiguous page range attributed to one logical
// document instance. Immutable once produced by boundary detection.
type DocumentSpan struct {
	DocType    DocType                   `json:"document_type"`
	Confidence float64                   `json:"confidence"`
	PageRange  PageRange                 `json:"page_range"`
	Indicators []string                  `json:"indicators,omitempty"`
	Fields     map[string]ExtractedField `json:"fields,omitempty"`
}

// ProcessingResult is the full outcome of processing one PDF file.
// Field names and nesting are a stable contract: exporters and the DB
// mapping layer consume this JSON as-is.
type ProcessingResult struct {
	FilePath   string `json:"file_path"`
	FileName   string `json:"file_name"`
	TotalPages int    `json:"total_pages"`

	Status     Status `json:"status"`
	EngineUsed Engine `json:"engine_used,omitempty"`

	Documents []DocumentSpan `json:"documents"`

	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`

	StartedAt       time.Time `json:"started_at"`
	DurationSeconds float64   `json:"duration_seconds"`
}

// NewProcessingResult initializes a result in the processing state.
func NewProcessingResult(filePath, fileName string) *ProcessingResult {
	return &ProcessingResult{
		FilePath:  filePath,
		FileName:  fileName,
		Status:    StatusProcessing,
		Documents: []DocumentSpan{},
		Errors:    []string{},
		Warnings:  []string{},
		StartedAt: time.Now(),
	}
}

// AddError appends an error message. No-op once the result is terminal.
func (r *ProcessingResult) AddError(msg string) {
	if r.Status.Terminal() {
		return
	}
	r.Errors = append(r.Errors, msg)
}

// AddWarning appends a warning message. No-op once the result is terminal.
func (r *ProcessingResult) AddWarning(msg string) {
	if r.Status.Terminal() {
		return
	}
	r.Warnings = append(r.Warnings, msg)
}

// PrimaryDocType returns the type of the highest-confidence detected
// document, or DocTypeUnknown when nothing was detected.
func (r *ProcessingResult) PrimaryDocType() DocType {
	best := DocTypeUnknown
	bestConf := -1.0
	for _, d := range r.Documents {
		if d.Confidence > bestConf {
			best = d.DocType
			bestConf = d.Confidence
		}
	}
	return best
}
