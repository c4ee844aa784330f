package providers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/seongmin-k/tradescan/internal/document"
)

// LayoutProvider extracts text row by row, reconstructing the reading order
// of tabular documents. Slower than the plain text layer but keeps values
// next to their labels, which matters for forms like customs declarations.
type LayoutProvider struct{}

// NewLayoutProvider creates a layout-aware text provider.
func NewLayoutProvider() *LayoutProvider { return &LayoutProvider{} }

// Name returns the engine identifier.
func (p *LayoutProvider) Name() document.Engine { return document.EngineLayout }

// MinAcceptLength returns the acceptance threshold for layout output.
func (p *LayoutProvider) MinAcceptLength() int { return minLengthLocal }

// Extract reads each page as positioned rows, top to bottom, left to right.
func (p *LayoutProvider) Extract(ctx context.Context, filePath string) ([]document.PageText, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	if r.NumPage() == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	var pages []document.PageText
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		text := renderRows(rows)
		if text == "" {
			continue
		}
		pages = append(pages, document.PageText{Number: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no rows extracted from %d pages", r.NumPage())
	}
	return pages, nil
}

// renderRows joins positioned rows into lines. PDF coordinates grow upward,
// so higher positions come first.
func renderRows(rows pdf.Rows) string {
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Position > rows[b].Position
	})

	var b strings.Builder
	for _, row := range rows {
		words := make([]pdf.Text, len(row.Content))
		copy(words, row.Content)
		sort.SliceStable(words, func(a, b int) bool {
			return words[a].X < words[b].X
		})

		var line strings.Builder
		for _, w := range words {
			line.WriteString(w.S)
		}
		trimmed := strings.TrimSpace(line.String())
		if trimmed == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(trimmed)
	}
	return b.String()
}

var _ TextProvider = (*LayoutProvider)(nil)
