package providers

import (
	"context"

	"github.com/seongmin-k/tradescan/internal/document"
)

// MockProvider is a configurable TextProvider for tests.
type MockProvider struct {
	Engine    document.Engine
	Pages     []document.PageText
	Err       error
	MinLength int

	Calls int
}

// Name returns the configured engine identifier.
func (m *MockProvider) Name() document.Engine { return m.Engine }

// MinAcceptLength returns the configured threshold, or the local default.
func (m *MockProvider) MinAcceptLength() int {
	if m.MinLength > 0 {
		return m.MinLength
	}
	return minLengthLocal
}

// Extract returns the canned pages or error.
func (m *MockProvider) Extract(ctx context.Context, filePath string) ([]document.PageText, error) {
	m.Calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Pages, nil
}

var _ TextProvider = (*MockProvider)(nil)
