package providers

import (
	"testing"

	"github.com/seongmin-k/tradescan/internal/document"
)

func TestRegistryRegisterGet(t *testing.T) {
	r := NewRegistry()

	native := &MockProvider{Engine: document.EngineNative}
	r.Register(native)

	t.Run("get registered", func(t *testing.T) {
		got, err := r.Get(document.EngineNative)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Name() != document.EngineNative {
			t.Errorf("Name() = %v, want %v", got.Name(), document.EngineNative)
		}
	})

	t.Run("get unknown", func(t *testing.T) {
		if _, err := r.Get(document.EngineUpstage); err == nil {
			t.Error("expected error for unregistered engine")
		}
	})

	t.Run("register replaces", func(t *testing.T) {
		repl := &MockProvider{Engine: document.EngineNative, MinLength: 7}
		r.Register(repl)
		got, err := r.Get(document.EngineNative)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.MinAcceptLength() != 7 {
			t.Error("Register did not replace existing provider")
		}
	})

	t.Run("unregister", func(t *testing.T) {
		r.Unregister(document.EngineNative)
		if r.Has(document.EngineNative) {
			t.Error("engine still registered after Unregister")
		}
	})
}

func TestRegistryChain(t *testing.T) {
	r := NewRegistry()
	for _, e := range []document.Engine{
		document.EngineNative,
		document.EngineLayout,
		document.EngineTesseract,
	} {
		r.Register(&MockProvider{Engine: e})
	}

	t.Run("default order", func(t *testing.T) {
		chain := r.Chain("")
		want := []document.Engine{
			document.EngineNative,
			document.EngineLayout,
			document.EngineTesseract,
		}
		assertChainOrder(t, chain, want)
	})

	t.Run("preferred first", func(t *testing.T) {
		chain := r.Chain(document.EngineTesseract)
		want := []document.Engine{
			document.EngineTesseract,
			document.EngineNative,
			document.EngineLayout,
		}
		assertChainOrder(t, chain, want)
	})

	t.Run("unregistered preferred skipped", func(t *testing.T) {
		chain := r.Chain(document.EngineUpstage)
		want := []document.Engine{
			document.EngineNative,
			document.EngineLayout,
			document.EngineTesseract,
		}
		assertChainOrder(t, chain, want)
	})
}

func assertChainOrder(t *testing.T, chain []TextProvider, want []document.Engine) {
	t.Helper()
	if len(chain) != len(want) {
		t.Fatalf("chain length = %d, want %d", len(chain), len(want))
	}
	for i, p := range chain {
		if p.Name() != want[i] {
			t.Errorf("chain[%d] = %v, want %v", i, p.Name(), want[i])
		}
	}
}

func TestCleanPages(t *testing.T) {
	pages := []document.PageText{
		{Number: 1, Text: "  COMMERCIAL\t INVOICE \n\n No. INV-001  "},
		{Number: 2, Text: "PACKING   LIST"},
	}
	cleaned := CleanPages(pages)

	if cleaned[0].Text != "COMMERCIAL INVOICE\nNo. INV-001" {
		t.Errorf("page 1 = %q", cleaned[0].Text)
	}
	if cleaned[1].Text != "PACKING LIST" {
		t.Errorf("page 2 = %q", cleaned[1].Text)
	}
	if cleaned[0].Number != 1 || cleaned[1].Number != 2 {
		t.Error("page numbers changed during cleaning")
	}
}

func TestCleanPagesKeepsLineBreaks(t *testing.T) {
	// Line boundaries terminate open-ended values such as party names,
	// so cleaning must never fold separate lines into one.
	pages := []document.PageText{{
		Number: 1,
		Text:   "공급자  상호:\t한국무역상사  \r\n공급받는자 상호: 바이어코리아\n\n합계금액:  1,100,000",
	}}
	cleaned := CleanPages(pages)

	want := "공급자 상호: 한국무역상사\n공급받는자 상호: 바이어코리아\n합계금액: 1,100,000"
	if cleaned[0].Text != want {
		t.Errorf("cleaned = %q, want %q", cleaned[0].Text, want)
	}
}

func TestTotalTextLength(t *testing.T) {
	pages := []document.PageText{
		{Number: 1, Text: "hello"},
		{Number: 2, Text: "world!"},
	}
	if got := TotalTextLength(pages); got != 11 {
		t.Errorf("TotalTextLength = %d, want 11", got)
	}
	if got := TotalTextLength(nil); got != 0 {
		t.Errorf("TotalTextLength(nil) = %d, want 0", got)
	}
}
