package providers

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/seongmin-k/tradescan/internal/document"
)

const (
	defaultTesseractDPI = 300
)

// TesseractConfig holds configuration for local OCR.
type TesseractConfig struct {
	Languages []string // defaults to kor+eng
	DPI       int
}

// TesseractProvider is the last-resort engine. It rasterizes each page with
// pdftoppm and feeds the image to a local tesseract installation. Slow, but
// it works without network access or a text layer.
type TesseractProvider struct {
	languages []string
	dpi       int
}

// NewTesseractProvider creates a local OCR provider.
func NewTesseractProvider(cfg TesseractConfig) *TesseractProvider {
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"kor", "eng"}
	}
	if cfg.DPI <= 0 {
		cfg.DPI = defaultTesseractDPI
	}
	return &TesseractProvider{
		languages: cfg.Languages,
		dpi:       cfg.DPI,
	}
}

// Name returns the engine identifier.
func (p *TesseractProvider) Name() document.Engine { return document.EngineTesseract }

// MinAcceptLength returns the acceptance threshold for OCR output.
func (p *TesseractProvider) MinAcceptLength() int { return minLengthLocal }

// Extract renders and OCRs the document one page at a time.
func (p *TesseractProvider) Extract(ctx context.Context, filePath string) ([]document.PageText, error) {
	pageCount, err := api.PageCountFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	tmpDir, err := os.MkdirTemp("", "tradescan-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(p.languages...); err != nil {
		return nil, fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("set page seg mode: %w", err)
	}

	var pages []document.PageText
	for i := 1; i <= pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		imagePath, err := p.renderPage(ctx, filePath, tmpDir, i)
		if err != nil {
			// Rendering failures on single pages are skipped, not fatal.
			continue
		}
		if err := client.SetImage(imagePath); err != nil {
			continue
		}
		text, err := client.Text()
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, document.PageText{Number: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("ocr produced no text across %d pages", pageCount)
	}
	return pages, nil
}

// renderPage rasterizes a single page to PNG using pdftoppm.
func (p *TesseractProvider) renderPage(ctx context.Context, filePath, tmpDir string, pageNum int) (string, error) {
	outPrefix := filepath.Join(tmpDir, fmt.Sprintf("page-%d", pageNum))
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", strconv.Itoa(pageNum),
		"-l", strconv.Itoa(pageNum),
		"-r", strconv.Itoa(p.dpi),
		"-singlefile",
		filePath,
		outPrefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm page %d: %w: %s", pageNum, err, strings.TrimSpace(string(out)))
	}

	imagePath := outPrefix + ".png"
	if _, err := os.Stat(imagePath); err != nil {
		return "", fmt.Errorf("rendered image missing: %w", err)
	}
	return imagePath, nil
}

var _ TextProvider = (*TesseractProvider)(nil)
