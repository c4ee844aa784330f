package fields

import (
	"testing"

	"github.com/seongmin-k/tradescan/internal/document"
)

func extractOne(t *testing.T, docType document.DocType, text string) map[string]document.ExtractedField {
	t.Helper()
	e := NewExtractor()
	pages := []document.PageText{{Number: 1, Text: text}}
	return e.Extract(docType, pages, document.EngineUpstage)
}

func TestExtractTaxInvoice(t *testing.T) {
	got := extractOne(t, document.DocTypeTaxInvoice,
		"전자세금계산서 번호 2024-001\n공급가액: ₩1,000,000\n세액: 100,000\n발급일자 2024년 3월 15일")

	t.Run("supply amount normalized", func(t *testing.T) {
		f, ok := got["supply_amount"]
		if !ok {
			t.Fatal("supply_amount not extracted")
		}
		if f.Value != 1000000.0 {
			t.Errorf("value = %v, want 1000000", f.Value)
		}
		if f.Confidence != 0.9 {
			t.Errorf("confidence = %v, want 0.9 (first pattern)", f.Confidence)
		}
		if f.PatternRank != 0 {
			t.Errorf("pattern rank = %d, want 0", f.PatternRank)
		}
	})

	t.Run("issue date normalized", func(t *testing.T) {
		f, ok := got["issue_date"]
		if !ok {
			t.Fatal("issue_date not extracted")
		}
		if f.Value != "2024-03-15" {
			t.Errorf("value = %v, want 2024-03-15", f.Value)
		}
	})

	t.Run("engine recorded", func(t *testing.T) {
		if got["supply_amount"].Engine != document.EngineUpstage {
			t.Errorf("engine = %v", got["supply_amount"].Engine)
		}
	})
}

func TestExtractSecondPatternConfidence(t *testing.T) {
	// 송품장 번호 matches the second invoice_number pattern only.
	got := extractOne(t, document.DocTypeInvoice, "송품장 번호: ABC-123")

	f, ok := got["invoice_number"]
	if !ok {
		t.Fatal("invoice_number not extracted")
	}
	if f.Value != "ABC-123" {
		t.Errorf("value = %v", f.Value)
	}
	if f.Confidence < 0.799 || f.Confidence > 0.801 {
		t.Errorf("confidence = %v, want 0.8 (second pattern)", f.Confidence)
	}
	if f.PatternRank != 1 {
		t.Errorf("pattern rank = %d, want 1", f.PatternRank)
	}
}

func TestExtractConfidenceMonotonicity(t *testing.T) {
	spec := fieldTables[document.DocTypeBillOfLading]
	for _, fs := range spec {
		prev := 1.1
		for rank := range fs.patterns {
			conf := fs.base - confidenceStep*float64(rank)
			if conf < confidenceFloor {
				conf = confidenceFloor
			}
			if conf > prev {
				t.Errorf("%s: confidence rose with rank %d", fs.name, rank)
			}
			prev = conf
		}
	}
}

func TestExtractBillOfLadingTruncation(t *testing.T) {
	got := extractOne(t, document.DocTypeBillOfLading,
		"B/L NO: ABCDEFGHIJKLMNOPQRSTUVWXYZ123\nVessel Name: EVER GIVEN\nGross Weight: 12,500.5 KGS")

	t.Run("bl number capped at 20", func(t *testing.T) {
		f := got["bl_number"]
		if len(f.Value.(string)) != 20 {
			t.Errorf("bl_number length = %d, want 20: %v", len(f.Value.(string)), f.Value)
		}
	})

	t.Run("weight numeric", func(t *testing.T) {
		f, ok := got["gross_weight"]
		if !ok {
			t.Fatal("gross_weight not extracted")
		}
		if f.Value != 12500.5 {
			t.Errorf("gross_weight = %v, want 12500.5", f.Value)
		}
	})
}

func TestExtractDescriptionEllipsis(t *testing.T) {
	long := "Description of Goods: AAAAAAAAAABBBBBBBBBBCCCCCCCCCCDDDDDDDDDDEEEEEEEEEEFFFFF"
	got := extractOne(t, document.DocTypeInvoice, long)

	f, ok := got["description"]
	if !ok {
		t.Fatal("description not extracted")
	}
	v := f.Value.(string)
	if len([]rune(v)) != 53 || v[len(v)-3:] != "..." {
		t.Errorf("description = %q, want 50 chars plus ellipsis", v)
	}
}

func TestExtractUnparseableDateDropped(t *testing.T) {
	got := extractOne(t, document.DocTypeTaxInvoice, "발급일자 2024년 13월 45일")
	if _, ok := got["issue_date"]; ok {
		t.Error("invalid date should be dropped, not stored raw")
	}
}

func TestExtractSourcePage(t *testing.T) {
	e := NewExtractor()
	pages := []document.PageText{
		{Number: 3, Text: "nothing here"},
		{Number: 4, Text: "승인번호: 2024-5678"},
	}
	got := e.Extract(document.DocTypeRemittanceAdvice, pages, document.EngineNative)

	f, ok := got["approval_number"]
	if !ok {
		t.Fatal("approval_number not extracted")
	}
	if f.SourcePage != 4 {
		t.Errorf("source page = %d, want 4", f.SourcePage)
	}
}

func TestIdentifier(t *testing.T) {
	t.Run("bill of lading", func(t *testing.T) {
		got := Identifier(document.DocTypeBillOfLading, "B/L No. hdmu1234567")
		if got != "HDMU1234567" {
			t.Errorf("identifier = %q", got)
		}
	})

	t.Run("export declaration", func(t *testing.T) {
		got := Identifier(document.DocTypeExportDeclaration, "신고번호 12345-67-890123X")
		if got != "12345-67-890123X" {
			t.Errorf("identifier = %q", got)
		}
	})

	t.Run("type without identifier", func(t *testing.T) {
		if got := Identifier(document.DocTypeInvoice, "Invoice No. A-1"); got != "" {
			t.Errorf("identifier = %q, want empty", got)
		}
	})
}

func TestExtractUnknownType(t *testing.T) {
	if got := extractOne(t, document.DocTypeUnknown, "anything"); got != nil {
		t.Errorf("unknown type produced fields: %v", got)
	}
}
