// Package providers implements the text extraction providers the pipeline
// falls back across: a cloud document-AI client, two local text-layer
// readers, and a Tesseract OCR provider. All of them are interchangeable
// behind the TextProvider interface.
package providers

import (
	"context"
	"strings"

	"github.com/seongmin-k/tradescan/internal/document"
)

// TextProvider is a single text extraction capability. Implementations may
// be slow and may fail; the orchestrator wraps every call with a timeout
// and falls through to the next provider on error or under-threshold
// output.
type TextProvider interface {
	// Name returns the engine identifier for this provider.
	Name() document.Engine

	// Extract returns page-segmented text for the PDF at filePath.
	// Page numbers are 1-indexed and strictly increasing.
	Extract(ctx context.Context, filePath string) ([]document.PageText, error)

	// MinAcceptLength is the minimum total trimmed text length this
	// provider's output must exceed to be accepted. Providers that
	// guarantee structure even on sparse pages use a lower threshold.
	MinAcceptLength() int
}

const (
	// minLengthCloud is the acceptance threshold for the cloud
	// document-AI provider, which returns structured output even for
	// near-empty pages.
	minLengthCloud = 20

	// minLengthLocal is the acceptance threshold for local readers and
	// OCR, which emit noise on scanned pages without a text layer.
	minLengthLocal = 50
)

// TotalTextLength sums the trimmed length of every page. Used by the
// orchestrator for acceptance checks.
func TotalTextLength(pages []document.PageText) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p.Text))
	}
	return n
}

// CleanPages normalizes whitespace on every page: within each line, runs
// of horizontal whitespace collapse to a single space and edges are
// trimmed; blank lines are dropped. Line breaks are preserved because
// several field patterns use them as value terminators.
// Scoring and field extraction assume this normalization.
func CleanPages(pages []document.PageText) []document.PageText {
	out := make([]document.PageText, 0, len(pages))
	for _, p := range pages {
		out = append(out, document.PageText{
			Number: p.Number,
			Text:   cleanText(p.Text),
		})
	}
	return out
}

func cleanText(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
