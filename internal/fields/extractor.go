package fields

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/seongmin-k/tradescan/internal/document"
)

const (
	// confidenceStep is subtracted per pattern rank.
	confidenceStep = 0.1
	// confidenceFloor is the lowest confidence a match can carry.
	confidenceFloor = 0.5
)

// Extractor runs the per-type pattern tables over document text. It is
// stateless and safe for concurrent use.
type Extractor struct{}

// NewExtractor creates a field extractor over the built-in tables.
func NewExtractor() *Extractor { return &Extractor{} }

// Extract pulls every extractable field from the given pages. First
// matching pattern wins per field; its rank discounts the confidence.
// Fields that do not match, or whose value fails normalization, are
// omitted.
func (e *Extractor) Extract(docType document.DocType, pages []document.PageText, engine document.Engine) map[string]document.ExtractedField {
	specs, ok := fieldTables[docType]
	if !ok {
		return nil
	}

	text, offsets := joinPages(pages)
	out := make(map[string]document.ExtractedField)

	for _, spec := range specs {
		for rank, re := range spec.patterns {
			loc := re.FindStringSubmatchIndex(text)
			if loc == nil {
				continue
			}
			raw, start := submatch(text, loc)
			value, ok := normalize(raw, spec)
			if !ok {
				break
			}
			conf := spec.base - confidenceStep*float64(rank)
			if conf < confidenceFloor {
				conf = confidenceFloor
			}
			out[spec.name] = document.ExtractedField{
				Value:       value,
				Confidence:  conf,
				SourcePage:  pageForOffset(offsets, start),
				Engine:      engine,
				PatternRank: rank,
			}
			break
		}
	}
	return out
}

// Identifier returns the document's own number (B/L number, declaration
// number) from one page of text, or "" when the type has no identifier
// or none is found.
func Identifier(docType document.DocType, text string) string {
	for _, re := range identifierPatterns[docType] {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.ToUpper(strings.TrimSpace(m[1]))
		}
	}
	return ""
}

// pageOffset maps the start offset of a page's text within the joined
// document text back to its page number.
type pageOffset struct {
	start int
	page  int
}

func joinPages(pages []document.PageText) (string, []pageOffset) {
	var b strings.Builder
	offsets := make([]pageOffset, 0, len(pages))
	for i, p := range pages {
		if i > 0 {
			b.WriteByte('\n')
		}
		offsets = append(offsets, pageOffset{start: b.Len(), page: p.Number})
		b.WriteString(p.Text)
	}
	return b.String(), offsets
}

func pageForOffset(offsets []pageOffset, off int) int {
	if len(offsets) == 0 {
		return 0
	}
	i := sort.Search(len(offsets), func(i int) bool { return offsets[i].start > off })
	return offsets[i-1].page
}

// submatch returns group 1 when present, otherwise the whole match, plus
// the match start offset.
func submatch(text string, loc []int) (string, int) {
	if len(loc) >= 4 && loc[2] >= 0 {
		return text[loc[2]:loc[3]], loc[2]
	}
	return text[loc[0]:loc[1]], loc[0]
}

// normalize converts a raw match into its stored value. A false return
// drops the field entirely.
func normalize(raw string, spec fieldSpec) (any, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	switch spec.kind {
	case kindNumeric:
		return normalizeNumeric(raw)
	case kindDate:
		return normalizeDate(raw)
	default:
		return truncate(raw, spec.maxLen, spec.ellipsis), true
	}
}

var currencyStripper = strings.NewReplacer(",", "", "₩", "", "$", "", "¥", "", "€", "", " ", "")

func normalizeNumeric(raw string) (any, bool) {
	cleaned := currencyStripper.Replace(raw)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, false
	}
	return v, true
}

var (
	dateKorean  = regexp.MustCompile(`^(\d{4})[-./년]\s*(\d{1,2})[-./월]\s*(\d{1,2})[일]?$`)
	dateWestern = regexp.MustCompile(`^(\d{1,2})[-./](\d{1,2})[-./](\d{4})$`)
)

// normalizeDate emits YYYY-MM-DD or rejects the value. Year-first forms
// are unambiguous; in day-or-month-first forms a leading component above
// 12 must be the day.
func normalizeDate(raw string) (any, bool) {
	if m := dateKorean.FindStringSubmatch(raw); m != nil {
		return formatDate(m[1], m[2], m[3])
	}
	if m := dateWestern.FindStringSubmatch(raw); m != nil {
		a, _ := strconv.Atoi(m[1])
		if a > 12 {
			return formatDate(m[3], m[2], m[1])
		}
		return formatDate(m[3], m[1], m[2])
	}
	return nil, false
}

func formatDate(year, month, day string) (any, bool) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return nil, false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
}

func truncate(s string, maxLen int, ellipsis bool) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if ellipsis {
		return string(runes[:maxLen]) + "..."
	}
	return string(runes[:maxLen])
}
