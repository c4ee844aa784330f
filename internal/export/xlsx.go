package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/seongmin-k/tradescan/internal/document"
)

const summarySheet = "Summary"

// sheetNames maps document types to workbook sheet names.
var sheetNames = map[document.DocType]string{
	document.DocTypeInvoice:           "Invoices",
	document.DocTypeTaxInvoice:        "Tax Invoices",
	document.DocTypeBillOfLading:      "Bills of Lading",
	document.DocTypeExportDeclaration: "Export Declarations",
	document.DocTypeRemittanceAdvice:  "Remittance Advices",
}

// WriteWorkbook writes one XLSX file: a summary sheet with one row per
// input file, plus one sheet per document type with a row per detected
// document and a column per field.
func WriteWorkbook(results map[string]*document.ProcessingResult, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummary(f, results); err != nil {
		return err
	}
	if err := writeTypeSheets(f, results); err != nil {
		return err
	}

	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, results map[string]*document.ProcessingResult) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	header := []any{"File", "Status", "Engine", "Pages", "Documents", "Duration (s)", "Errors"}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}

	row := 2
	for _, r := range sortedResults(results) {
		cells := []any{
			r.FileName,
			string(r.Status),
			string(r.EngineUsed),
			r.TotalPages,
			len(r.Documents),
			r.DurationSeconds,
			strings.Join(r.Errors, "; "),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(summarySheet, cell, &cells); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
		row++
	}
	return nil
}

func writeTypeSheets(f *excelize.File, results map[string]*document.ProcessingResult) error {
	// Collect rows and the union of field names per type first, so each
	// sheet gets a stable column set.
	type docRow struct {
		file string
		span document.DocumentSpan
	}
	rowsByType := make(map[document.DocType][]docRow)
	fieldsByType := make(map[document.DocType]map[string]bool)

	for _, r := range sortedResults(results) {
		for _, span := range r.Documents {
			rowsByType[span.DocType] = append(rowsByType[span.DocType], docRow{file: r.FileName, span: span})
			if fieldsByType[span.DocType] == nil {
				fieldsByType[span.DocType] = make(map[string]bool)
			}
			for name := range span.Fields {
				fieldsByType[span.DocType][name] = true
			}
		}
	}

	for _, docType := range document.AllDocTypes {
		rows := rowsByType[docType]
		if len(rows) == 0 {
			continue
		}
		sheet := sheetNames[docType]
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}

		var fieldCols []string
		for name := range fieldsByType[docType] {
			fieldCols = append(fieldCols, name)
		}
		sort.Strings(fieldCols)

		header := []any{"File", "Pages", "Confidence"}
		for _, name := range fieldCols {
			header = append(header, name)
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("write header on %s: %w", sheet, err)
		}

		for i, dr := range rows {
			cells := []any{
				dr.file,
				fmt.Sprintf("%d-%d", dr.span.PageRange.Start, dr.span.PageRange.End),
				dr.span.Confidence,
			}
			for _, name := range fieldCols {
				if fv, ok := dr.span.Fields[name]; ok {
					cells = append(cells, fv.Value)
				} else {
					cells = append(cells, "")
				}
			}
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
				return fmt.Errorf("write row on %s: %w", sheet, err)
			}
		}
	}
	return nil
}

// sortedResults orders results by file name so workbook rows are stable
// across runs regardless of batch completion order.
func sortedResults(results map[string]*document.ProcessingResult) []*document.ProcessingResult {
	out := make([]*document.ProcessingResult, 0, len(results))
	for _, r := range results {
		out = append(out, r)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].FileName < out[b].FileName })
	return out
}
