package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/seongmin-k/tradescan/internal/document"
)

const (
	UpstageBaseURL = "https://api.upstage.ai/v1"
	UpstageModel   = "document-parse"

	upstageMaxRetries = 3
	upstageRetryDelay = 2 * time.Second
)

// UpstageConfig holds configuration for the Upstage document parse client.
type UpstageConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// UpstageProvider implements TextProvider using the Upstage document
// digitization API. It handles scanned and mixed documents well, so it
// runs first in the default chain.
type UpstageProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewUpstageProvider creates a new Upstage client.
func NewUpstageProvider(cfg UpstageConfig) *UpstageProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = UpstageBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = UpstageModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &UpstageProvider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the engine identifier.
func (p *UpstageProvider) Name() document.Engine { return document.EngineUpstage }

// MinAcceptLength returns the acceptance threshold. The API already filters
// noise, so even short output tends to be meaningful.
func (p *UpstageProvider) MinAcceptLength() int { return minLengthCloud }

// Extract uploads the PDF and reassembles the parsed elements per page.
func (p *UpstageProvider) Extract(ctx context.Context, filePath string) ([]document.PageText, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("upstage api key not configured")
	}

	var resp *upstageResponse
	err := retry.Do(
		func() error {
			var reqErr error
			resp, reqErr = p.doRequest(ctx, filePath)
			return reqErr
		},
		retry.Context(ctx),
		retry.Attempts(upstageMaxRetries),
		retry.Delay(upstageRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(func(err error) bool {
			var apiErr *upstageAPIError
			if errors.As(err, &apiErr) {
				// Auth and bad-request failures will not heal on retry.
				return apiErr.StatusCode >= 500 || apiErr.StatusCode == http.StatusTooManyRequests
			}
			return true
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	pages := resp.pagesText()
	if len(pages) == 0 {
		return nil, fmt.Errorf("no text elements in response")
	}
	return pages, nil
}

// doRequest uploads the document as multipart form data.
func (p *UpstageProvider) doRequest(ctx context.Context, filePath string) (*upstageResponse, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("document", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := mw.WriteField("ocr", "force"); err != nil {
		return nil, fmt.Errorf("write field: %w", err)
	}
	if err := mw.WriteField("model", p.model); err != nil {
		return nil, fmt.Errorf("write field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/document-digitization", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &upstageAPIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		var errResp upstageErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			apiErr.Message = errResp.Error.Message
		}
		return nil, apiErr
	}

	var parsed upstageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &parsed, nil
}

// Upstage API types

type upstageResponse struct {
	API      string           `json:"api"`
	Model    string           `json:"model"`
	Elements []upstageElement `json:"elements"`
	Usage    *upstageUsage    `json:"usage,omitempty"`
}

type upstageElement struct {
	ID       int            `json:"id"`
	Category string         `json:"category"`
	Page     int            `json:"page"`
	Content  upstageContent `json:"content"`
}

type upstageContent struct {
	Text     string `json:"text,omitempty"`
	Markdown string `json:"markdown,omitempty"`
	HTML     string `json:"html,omitempty"`
}

type upstageUsage struct {
	Pages int `json:"pages"`
}

type upstageErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// upstageAPIError carries the HTTP status so retry can distinguish
// transient failures from permanent ones.
type upstageAPIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *upstageAPIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstage error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstage error (status %d): %s", e.StatusCode, e.Body)
}

// pagesText groups element text by page number, element order preserved.
func (r *upstageResponse) pagesText() []document.PageText {
	byPage := make(map[int][]string)
	for _, el := range r.Elements {
		text := el.Content.Text
		if text == "" {
			text = el.Content.Markdown
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		byPage[el.Page] = append(byPage[el.Page], text)
	}

	numbers := make([]int, 0, len(byPage))
	for n := range byPage {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	pages := make([]document.PageText, 0, len(numbers))
	for _, n := range numbers {
		pages = append(pages, document.PageText{
			Number: n,
			Text:   strings.Join(byPage[n], "\n"),
		})
	}
	return pages
}

var _ TextProvider = (*UpstageProvider)(nil)
