package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/seongmin-k/tradescan/internal/document"
)

// NativeProvider reads the embedded text layer of a PDF. It is the fastest
// provider but produces nothing useful for scanned documents.
type NativeProvider struct{}

// NewNativeProvider creates a native text-layer provider.
func NewNativeProvider() *NativeProvider { return &NativeProvider{} }

// Name returns the engine identifier.
func (p *NativeProvider) Name() document.Engine { return document.EngineNative }

// MinAcceptLength returns the acceptance threshold for native output.
func (p *NativeProvider) MinAcceptLength() int { return minLengthLocal }

// Extract reads plain text page by page.
func (p *NativeProvider) Extract(ctx context.Context, filePath string) ([]document.PageText, error) {
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
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not fail the file.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, document.PageText{Number: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no text layer found in %d pages", r.NumPage())
	}
	return pages, nil
}

var _ TextProvider = (*NativeProvider)(nil)
