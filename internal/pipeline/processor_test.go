package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/seongmin-k/tradescan/internal/document"
	"github.com/seongmin-k/tradescan/internal/providers"
)

func fakeValidator(pages int) Validator {
	return func(path string) (FileInfo, error) {
		return FileInfo{Path: path, Name: "doc.pdf", PageCount: pages}, nil
	}
}

func newTestProcessor(t *testing.T, pages int, provs ...providers.TextProvider) (*Processor, *providers.Stats) {
	t.Helper()
	reg := providers.NewRegistry()
	for _, p := range provs {
		reg.Register(p)
	}
	stats := providers.NewStats()
	orch := NewOrchestrator(OrchestratorConfig{Registry: reg, Stats: stats})
	proc := NewProcessor(ProcessorConfig{
		Orchestrator: orch,
		Validator:    fakeValidator(pages),
	})
	return proc, stats
}

const taxInvoicePage = "세금계산서 공급가액: ₩1,000,000 세액: 100,000 부가가치세 합계금액"

func TestProcessSinglePageTaxInvoice(t *testing.T) {
	// Scenario: a single-page document with strong tax invoice markers.
	proc, _ := newTestProcessor(t, 1, &providers.MockProvider{
		Engine: document.EngineUpstage,
		Pages:  []document.PageText{{Number: 1, Text: taxInvoicePage}},
	})

	result := proc.Process(context.Background(), "/in/doc.pdf", "")

	if result.Status != document.StatusCompleted {
		t.Fatalf("status = %v, want completed (errors: %v)", result.Status, result.Errors)
	}
	if result.EngineUsed != document.EngineUpstage {
		t.Errorf("engine = %v", result.EngineUsed)
	}
	if result.PrimaryDocType() != document.DocTypeTaxInvoice {
		t.Fatalf("primary type = %v, want tax_invoice", result.PrimaryDocType())
	}

	doc := result.Documents[0]
	if doc.PageRange.Start != 1 || doc.PageRange.End != 1 {
		t.Errorf("range = %+v, want 1-1", doc.PageRange)
	}
	f, ok := doc.Fields["supply_amount"]
	if !ok {
		t.Fatal("supply_amount not extracted")
	}
	if f.Value != 1000000.0 {
		t.Errorf("supply_amount = %v", f.Value)
	}
	if f.Engine != document.EngineUpstage {
		t.Errorf("field engine = %v", f.Engine)
	}
}

func TestProcessPartyNamesStopAtLineEnd(t *testing.T) {
	// Party names have open-ended captures terminated by the line break,
	// so cleaning must not fold the rest of the page into the value.
	page := "세금계산서\n공급자   상호:\t한국무역상사  \n공급받는자 상호: 바이어코리아\n공급가액: 1,100,000\n비고: 없음"
	proc, _ := newTestProcessor(t, 1, &providers.MockProvider{
		Engine: document.EngineUpstage,
		Pages:  []document.PageText{{Number: 1, Text: page}},
	})

	result := proc.Process(context.Background(), "/in/doc.pdf", "")

	if result.PrimaryDocType() != document.DocTypeTaxInvoice {
		t.Fatalf("primary type = %v, want tax_invoice", result.PrimaryDocType())
	}
	fields := result.Documents[0].Fields
	if got := fields["supplier_name"].Value; got != "한국무역상사" {
		t.Errorf("supplier_name = %q, want 한국무역상사", got)
	}
	if got := fields["buyer_name"].Value; got != "바이어코리아" {
		t.Errorf("buyer_name = %q, want 바이어코리아", got)
	}
}

func TestProcessFallbackAfterFailure(t *testing.T) {
	// Scenario: the preferred provider fails twice... the first engine
	// errors, the second returns under-threshold output, the third wins.
	failing := &providers.MockProvider{
		Engine: document.EngineUpstage,
		Err:    errors.New("api unavailable"),
	}
	short := &providers.MockProvider{
		Engine: document.EngineNative,
		Pages:  []document.PageText{{Number: 1, Text: "tiny"}},
	}
	good := &providers.MockProvider{
		Engine: document.EngineLayout,
		Pages: []document.PageText{
			{Number: 1, Text: "BILL OF LADING B/L NO. HDMU1234567 Port of Loading BUSAN " + filler},
		},
	}

	proc, stats := newTestProcessor(t, 1, failing, short, good)
	result := proc.Process(context.Background(), "/in/doc.pdf", "")

	if result.Status != document.StatusCompleted {
		t.Fatalf("status = %v (errors: %v)", result.Status, result.Errors)
	}
	if result.EngineUsed != document.EngineLayout {
		t.Errorf("engine = %v, want layout", result.EngineUsed)
	}
	if len(result.Warnings) < 2 {
		t.Errorf("warnings = %v, want one per failed engine", result.Warnings)
	}

	snap := stats.Snapshot()
	if snap[document.EngineUpstage].FailureCount != 1 {
		t.Errorf("upstage failures = %d", snap[document.EngineUpstage].FailureCount)
	}
	if snap[document.EngineNative].FailureCount != 1 {
		t.Errorf("native failures = %d (short output must count as failure)", snap[document.EngineNative].FailureCount)
	}
	if snap[document.EngineLayout].SuccessCount != 1 {
		t.Errorf("layout successes = %d", snap[document.EngineLayout].SuccessCount)
	}
}

const filler = "additional descriptive text to exceed the local provider acceptance threshold"

func TestProcessAllProvidersExhausted(t *testing.T) {
	proc, _ := newTestProcessor(t, 1, &providers.MockProvider{
		Engine: document.EngineNative,
		Err:    errors.New("no text layer"),
	})

	result := proc.Process(context.Background(), "/in/doc.pdf", "")

	if result.Status != document.StatusFailed {
		t.Fatalf("status = %v, want failed", result.Status)
	}
	if len(result.Errors) == 0 {
		t.Error("expected errors populated")
	}
	if len(result.Documents) != 0 {
		t.Errorf("documents = %v, want empty", result.Documents)
	}
}

func TestProcessInvalidInput(t *testing.T) {
	reg := providers.NewRegistry()
	orch := NewOrchestrator(OrchestratorConfig{Registry: reg})
	proc := NewProcessor(ProcessorConfig{
		Orchestrator: orch,
		Validator: func(path string) (FileInfo, error) {
			return FileInfo{}, &InvalidInputError{Path: path, Reason: "not a .pdf file"}
		},
	})

	result := proc.Process(context.Background(), "/in/doc.txt", "")

	if result.Status != document.StatusFailed {
		t.Fatalf("status = %v, want failed", result.Status)
	}
	if result.FileName != "doc.txt" {
		t.Errorf("file name = %q", result.FileName)
	}
}

func TestProcessNoDetectionStillCompletes(t *testing.T) {
	proc, _ := newTestProcessor(t, 1, &providers.MockProvider{
		Engine: document.EngineNative,
		Pages:  []document.PageText{{Number: 1, Text: "plain unrelated prose " + filler}},
	})

	result := proc.Process(context.Background(), "/in/doc.pdf", "")

	if result.Status != document.StatusCompleted {
		t.Fatalf("status = %v, want completed", result.Status)
	}
	if len(result.Documents) != 0 {
		t.Errorf("documents = %d, want 0", len(result.Documents))
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning about empty classification")
	}
	if result.PrimaryDocType() != document.DocTypeUnknown {
		t.Errorf("primary type = %v, want unknown", result.PrimaryDocType())
	}
}

func TestProcessIdempotent(t *testing.T) {
	mk := func() *Processor {
		proc, _ := newTestProcessor(t, 1, &providers.MockProvider{
			Engine: document.EngineUpstage,
			Pages:  []document.PageText{{Number: 1, Text: taxInvoicePage}},
		})
		return proc
	}

	a := mk().Process(context.Background(), "/in/doc.pdf", "")
	b := mk().Process(context.Background(), "/in/doc.pdf", "")

	// Timestamps and durations differ by construction; compare the rest.
	a.StartedAt = b.StartedAt
	a.DurationSeconds, b.DurationSeconds = 0, 0

	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if string(aj) != string(bj) {
		t.Errorf("results differ across runs:\n%s\n%s", aj, bj)
	}
}
