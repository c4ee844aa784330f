package classify

import (
	"log/slog"
	"sort"

	"github.com/seongmin-k/tradescan/internal/document"
)

// confidenceCeiling caps span confidence; pattern evidence alone never
// reaches full certainty.
const confidenceCeiling = 0.9

// scoreNormalizer divides the average page score when converting it to a
// confidence value.
const scoreNormalizer = 5.0

// mergeableTypes may span multiple physical pages within one logical
// document. Everything else stays per-run.
var mergeableTypes = map[document.DocType]bool{
	document.DocTypeBillOfLading:      true,
	document.DocTypeExportDeclaration: true,
}

// IdentifierFn extracts a document's own identifier (a B/L number or a
// declaration number) from page text. An empty result means no identifier
// was found on the page.
type IdentifierFn func(docType document.DocType, text string) string

// BoundaryDetector groups scored pages into typed document spans.
type BoundaryDetector struct {
	identify IdentifierFn
	logger   *slog.Logger
}

// NewBoundaryDetector creates a boundary detector. identify may be nil,
// in which case adjacent spans of mergeable types never merge.
func NewBoundaryDetector(identify IdentifierFn, logger *slog.Logger) *BoundaryDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &BoundaryDetector{identify: identify, logger: logger}
}

// Detect finds document spans across the scored pages. pages carries the
// raw text for identifier checks and must be parallel to scores.
func (d *BoundaryDetector) Detect(pages []document.PageText, scores []document.PageScore) []document.DocumentSpan {
	var spans []document.DocumentSpan

	for _, docType := range document.AllDocTypes {
		spans = append(spans, d.detectType(docType, pages, scores)...)
	}

	spans = d.resolveOverlaps(spans)

	sort.SliceStable(spans, func(a, b int) bool {
		return spans[a].Confidence > spans[b].Confidence
	})
	return spans
}

// detectType runs the strong/weak grouping for one document type.
func (d *BoundaryDetector) detectType(docType document.DocType, pages []document.PageText, scores []document.PageScore) []document.DocumentSpan {
	var strong, weak []int
	for _, ps := range scores {
		entry := ps.Scores[docType]
		switch {
		case entry.MeetsThreshold:
			strong = append(strong, ps.PageNumber)
		case entry.Score > 0:
			weak = append(weak, ps.PageNumber)
		}
	}
	if len(strong) == 0 {
		return nil
	}

	ranges := expandRanges(strong, weak)
	if mergeableTypes[docType] && d.identify != nil {
		textByPage := make(map[int]string, len(pages))
		for _, p := range pages {
			textByPage[p.Number] = p.Text
		}
		ranges = d.splitByIdentifier(docType, ranges, textByPage)
		ranges = d.mergeByIdentifier(docType, ranges, textByPage)
	}

	var spans []document.DocumentSpan
	for _, r := range ranges {
		span := d.buildSpan(docType, r, scores)
		if span.Confidence > 0 {
			spans = append(spans, span)
		}
	}
	return spans
}

// expandRanges groups adjacent strong pages into runs, then widens each
// run by at most one adjacent weak page per side.
func expandRanges(strong, weak []int) []document.PageRange {
	sort.Ints(strong)
	sort.Ints(weak)

	var groups [][]int
	current := []int{strong[0]}
	for _, p := range strong[1:] {
		if p <= current[len(current)-1]+1 {
			current = append(current, p)
		} else {
			groups = append(groups, current)
			current = []int{p}
		}
	}
	groups = append(groups, current)

	weakSet := make(map[int]bool, len(weak))
	for _, p := range weak {
		weakSet[p] = true
	}

	ranges := make([]document.PageRange, 0, len(groups))
	for _, g := range groups {
		r := document.PageRange{Start: g[0], End: g[len(g)-1]}
		if weakSet[r.Start-1] {
			r.Start--
		}
		if weakSet[r.End+1] {
			r.End++
		}
		ranges = append(ranges, r)
	}
	return ranges
}

// splitByIdentifier breaks a range wherever a page carries a document
// identifier that conflicts with the pages before it. A page without an
// identifier always stays with the current document.
func (d *BoundaryDetector) splitByIdentifier(docType document.DocType, ranges []document.PageRange, textByPage map[int]string) []document.PageRange {
	var out []document.PageRange
	for _, r := range ranges {
		start := r.Start
		currentID := ""
		for n := r.Start; n <= r.End; n++ {
			id := d.identify(docType, textByPage[n])
			if id == "" {
				continue
			}
			if currentID == "" {
				currentID = id
				continue
			}
			if id != currentID {
				out = append(out, document.PageRange{Start: start, End: n - 1})
				start = n
				currentID = id
			}
		}
		out = append(out, document.PageRange{Start: start, End: r.End})
	}
	return out
}

// mergeByIdentifier joins adjacent ranges of one type when their document
// identifiers agree. Missing identifiers on one side do not block a merge;
// two different identifiers always do.
func (d *BoundaryDetector) mergeByIdentifier(docType document.DocType, ranges []document.PageRange, textByPage map[int]string) []document.PageRange {
	if len(ranges) < 2 {
		return ranges
	}

	rangeID := func(r document.PageRange) string {
		for n := r.Start; n <= r.End; n++ {
			if id := d.identify(docType, textByPage[n]); id != "" {
				return id
			}
		}
		return ""
	}

	merged := []document.PageRange{ranges[0]}
	for _, next := range ranges[1:] {
		last := &merged[len(merged)-1]
		if next.Start > last.End+1 {
			merged = append(merged, next)
			continue
		}
		lastID, nextID := rangeID(*last), rangeID(next)
		if lastID != "" && nextID != "" && lastID != nextID {
			merged = append(merged, next)
			continue
		}
		d.logger.Debug("merged adjacent document ranges",
			"type", docType, "pages", []int{last.Start, next.End}, "identifier", lastID)
		last.End = next.End
	}
	return merged
}

// buildSpan computes the confidence and indicator list for one range.
func (d *BoundaryDetector) buildSpan(docType document.DocType, r document.PageRange, scores []document.PageScore) document.DocumentSpan {
	total, covered := 0, 0
	seen := make(map[string]bool)
	var indicators []string

	for _, ps := range scores {
		if ps.PageNumber < r.Start || ps.PageNumber > r.End {
			continue
		}
		entry := ps.Scores[docType]
		total += entry.Score
		covered++
		for _, pat := range entry.MatchedPatterns {
			if !seen[pat] {
				seen[pat] = true
				indicators = append(indicators, pat)
			}
		}
	}

	span := document.DocumentSpan{
		DocType:    docType,
		PageRange:  r,
		Indicators: indicators,
	}
	if covered > 0 {
		avg := float64(total) / float64(covered)
		span.Confidence = avg / scoreNormalizer
		if span.Confidence > confidenceCeiling {
			span.Confidence = confidenceCeiling
		}
	}
	return span
}

// resolveOverlaps makes a weaker same-type span yield its contested pages
// to the stronger one, dropping the weaker span only when nothing is left.
// Different types may legitimately share pages.
func (d *BoundaryDetector) resolveOverlaps(spans []document.DocumentSpan) []document.DocumentSpan {
	sort.SliceStable(spans, func(a, b int) bool {
		if spans[a].Confidence != spans[b].Confidence {
			return spans[a].Confidence > spans[b].Confidence
		}
		return spans[a].PageRange.Start < spans[b].PageRange.Start
	})

	var kept []document.DocumentSpan
	for _, s := range spans {
		r := s.PageRange
		dropped := false
		for _, k := range kept {
			if k.DocType != s.DocType || !k.PageRange.Overlaps(r) {
				continue
			}
			switch {
			case k.PageRange.Start <= r.Start && k.PageRange.End >= r.End:
				dropped = true
			case k.PageRange.Start <= r.Start:
				r.Start = k.PageRange.End + 1
			case k.PageRange.End >= r.End:
				r.End = k.PageRange.Start - 1
			default:
				// Stronger span sits inside this one; keep the leading pages.
				r.End = k.PageRange.Start - 1
			}
			if dropped {
				break
			}
		}
		if dropped {
			continue
		}
		s.PageRange = r
		kept = append(kept, s)
	}
	return kept
}
