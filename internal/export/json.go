// Package export writes processing results to disk: one JSON file per
// input and an optional XLSX workbook summarizing a batch.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seongmin-k/tradescan/internal/document"
	"github.com/seongmin-k/tradescan/internal/schema"
)

// WriteJSON writes one result as <stem>.json under outDir, validating it
// against the contract schema first. Returns the written path.
func WriteJSON(result *document.ProcessingResult, outDir string) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	if err := schema.ValidateResult(data); err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	stem := strings.TrimSuffix(result.FileName, filepath.Ext(result.FileName))
	if stem == "" {
		stem = "result"
	}
	path := filepath.Join(outDir, stem+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}
	return path, nil
}
