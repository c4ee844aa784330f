package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/seongmin-k/tradescan/internal/document"
)

func sampleResult(name string) *document.ProcessingResult {
	r := document.NewProcessingResult("/in/"+name, name)
	r.TotalPages = 1
	r.EngineUsed = document.EngineNative
	r.Documents = []document.DocumentSpan{
		{
			DocType:    document.DocTypeBillOfLading,
			Confidence: 0.8,
			PageRange:  document.PageRange{Start: 1, End: 1},
			Fields: map[string]document.ExtractedField{
				"bl_number": {
					Value:      "HDMU1234567",
					Confidence: 0.9,
					SourcePage: 1,
					Engine:     document.EngineNative,
				},
			},
		},
	}
	r.Status = document.StatusCompleted
	r.StartedAt = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	r.DurationSeconds = 0.4
	return r
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteJSON(sampleResult("shipment.pdf"), dir)
	if err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if filepath.Base(path) != "shipment.json" {
		t.Errorf("output file = %s, want shipment.json", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var round document.ProcessingResult
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("written file is not valid JSON: %v", err)
	}
	if round.FileName != "shipment.pdf" || round.Status != document.StatusCompleted {
		t.Errorf("round trip mismatch: %+v", round)
	}
}

func TestWriteWorkbook(t *testing.T) {
	results := map[string]*document.ProcessingResult{
		"/in/a.pdf": sampleResult("a.pdf"),
		"/in/b.pdf": sampleResult("b.pdf"),
	}

	path := filepath.Join(t.TempDir(), "batch.xlsx")
	if err := WriteWorkbook(results, path); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	t.Run("summary rows", func(t *testing.T) {
		rows, err := f.GetRows("Summary")
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 3 {
			t.Fatalf("summary rows = %d, want header + 2", len(rows))
		}
		if rows[1][0] != "a.pdf" || rows[2][0] != "b.pdf" {
			t.Errorf("rows not sorted by file name: %v / %v", rows[1][0], rows[2][0])
		}
	})

	t.Run("type sheet", func(t *testing.T) {
		rows, err := f.GetRows("Bills of Lading")
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 3 {
			t.Fatalf("bill of lading rows = %d, want header + 2", len(rows))
		}
		if rows[0][3] != "bl_number" {
			t.Errorf("field column header = %v", rows[0])
		}
		if rows[1][3] != "HDMU1234567" {
			t.Errorf("field value = %v", rows[1][3])
		}
	})
}
