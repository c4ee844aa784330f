// Package classify scores pages against per-type signature patterns and
// groups the scored pages into document spans.
package classify

import (
	"regexp"
	"strings"

	"github.com/seongmin-k/tradescan/internal/document"
)

const (
	primaryWeight    = 3
	secondaryWeight  = 1
	exclusionPenalty = 2

	defaultMinScore = 1
)

// typeSignature is the pattern knowledge for one document type. Primary
// patterns are near-unique markers, secondary patterns are supporting
// vocabulary. Any exclusion match zeroes the page for that type.
type typeSignature struct {
	primary    []*regexp.Regexp
	secondary  []*regexp.Regexp
	exclusions []*regexp.Regexp
	minScore   int
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// signatures holds the per-type knowledge base. All patterns match against
// lowercased text, so ASCII patterns are written lowercase here. Korean
// trade vocabulary is kept as-is.
var signatures = map[document.DocType]typeSignature{
	document.DocTypeInvoice: {
		primary: compileAll(
			`invoice\s*(?:no\.?|number)`,
			`freight\s*(?:charge|cost)`,
			`인보이스`,
		),
		secondary: compileAll(
			`운임|화물운송료`,
			`remit\s*to`,
			`client\s*no`,
			`chargeable\s*wgt`,
			`expeditors`,
			`terminal\s*handling`,
			`forwarding\s*fee`,
			`document\s*fee`,
			`processing\s*fee`,
			`vat\s*category`,
		),
		exclusions: compileAll(
			`세금계산서`,
			`tax\s*invoice`,
		),
		minScore: defaultMinScore,
	},
	document.DocTypeTaxInvoice: {
		primary: compileAll(
			`세금계산서`,
			`영세율전자세금계산서`,
			`공급가액`,
			`부가가치세`,
		),
		secondary: compileAll(
			`공급받는자`,
			`사업자등록번호\s*\d{3}-\d{2}-\d{5}`,
			`매출세금계산서`,
			`세액`,
			`합계금액`,
			`발급일자`,
			`공급자상호`,
			`승인번호\s*\S*\d+`,
			`etradeinvoice`,
		),
		minScore: defaultMinScore,
	},
	document.DocTypeBillOfLading: {
		primary: compileAll(
			`bill\s*of\s*lading`,
			`b/l\s*(?:no\.?|number)`,
			`선하증권`,
		),
		secondary: compileAll(
			`port\s*of\s*loading`,
			`port\s*of\s*discharge`,
			`vessel\s*name`,
		),
		minScore: defaultMinScore,
	},
	document.DocTypeExportDeclaration: {
		primary: compileAll(
			`수출신고필증`,
			`수출신고서`,
			`export\s*declaration`,
		),
		secondary: compileAll(
			`신고번호\s*\S*\d+`,
			`관세청`,
			`통관`,
		),
		minScore: defaultMinScore,
	},
	document.DocTypeRemittanceAdvice: {
		primary: compileAll(
			`이체확인증`,
			`송금확인`,
			`송금증`,
			`transfer\s*confirmation`,
		),
		secondary: compileAll(
			`입금확인`,
			`확인증`,
			`출금|입금`,
			`송금일자`,
			`계좌번호`,
			`출금계좌번호`,
			`입금계좌번호`,
			`승인번호\s*\d+`,
			`한국외환은행`,
			`우리은행`,
			`농협|농업협동조합`,
		),
		minScore: defaultMinScore,
	},
}

// PageScorer computes per-type scores for raw page text. Scoring is pure:
// identical text always produces identical scores.
type PageScorer struct{}

// NewPageScorer creates a scorer over the built-in signature tables.
func NewPageScorer() *PageScorer { return &PageScorer{} }

// ScorePage computes the score of one page for every known document type.
// Text is lowercased before matching; every pattern occurrence counts.
func (s *PageScorer) ScorePage(page document.PageText) document.PageScore {
	text := strings.ToLower(page.Text)

	ps := document.PageScore{
		PageNumber: page.Number,
		Scores:     make(map[document.DocType]document.ScoreEntry, len(signatures)),
	}

	for _, docType := range document.AllDocTypes {
		sig, ok := signatures[docType]
		if !ok {
			continue
		}

		entry := document.ScoreEntry{}
		for _, re := range sig.primary {
			if n := len(re.FindAllStringIndex(text, -1)); n > 0 {
				entry.Score += n * primaryWeight
				entry.MatchedPatterns = append(entry.MatchedPatterns, re.String())
			}
		}
		for _, re := range sig.secondary {
			if n := len(re.FindAllStringIndex(text, -1)); n > 0 {
				entry.Score += n * secondaryWeight
				entry.MatchedPatterns = append(entry.MatchedPatterns, re.String())
			}
		}
		for _, re := range sig.exclusions {
			if n := len(re.FindAllStringIndex(text, -1)); n > 0 {
				entry.Score -= n * exclusionPenalty
				entry.Excluded = true
			}
		}
		if entry.Excluded {
			entry.Score = 0
		}
		entry.MeetsThreshold = entry.Score >= sig.minScore && !entry.Excluded

		ps.Scores[docType] = entry
	}
	return ps
}

// ScorePages scores every page in order.
func (s *PageScorer) ScorePages(pages []document.PageText) []document.PageScore {
	out := make([]document.PageScore, 0, len(pages))
	for _, p := range pages {
		out = append(out, s.ScorePage(p))
	}
	return out
}
