package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/seongmin-k/tradescan/internal/document"
	"github.com/seongmin-k/tradescan/internal/providers"
)

func TestBatchRunCollectsAllFiles(t *testing.T) {
	proc, _ := newTestProcessor(t, 1, &providers.MockProvider{
		Engine: document.EngineUpstage,
		Pages:  []document.PageText{{Number: 1, Text: taxInvoicePage}},
	})
	runner := NewBatchRunner(proc, 3, nil)

	var paths []string
	for i := 0; i < 10; i++ {
		paths = append(paths, fmt.Sprintf("/in/doc-%d.pdf", i))
	}

	batch := runner.Run(context.Background(), paths, "")

	if batch.RunID == "" {
		t.Error("missing run id")
	}
	if len(batch.Results) != len(paths) {
		t.Fatalf("collected %d results, want %d", len(batch.Results), len(paths))
	}
	for _, path := range paths {
		r, ok := batch.Results[path]
		if !ok {
			t.Fatalf("no result for %s", path)
		}
		if r.FilePath != path {
			t.Errorf("result keyed under %s has path %s", path, r.FilePath)
		}
	}
	if batch.Succeeded != 10 || batch.Failed != 0 {
		t.Errorf("succeeded/failed = %d/%d, want 10/0", batch.Succeeded, batch.Failed)
	}
}

func TestBatchRunFailingFileDoesNotAbortSiblings(t *testing.T) {
	reg := providers.NewRegistry()
	reg.Register(&providers.MockProvider{
		Engine: document.EngineNative,
		Pages:  []document.PageText{{Number: 1, Text: taxInvoicePage}},
	})
	orch := NewOrchestrator(OrchestratorConfig{Registry: reg})
	proc := NewProcessor(ProcessorConfig{
		Orchestrator: orch,
		Validator: func(path string) (FileInfo, error) {
			if path == "/in/broken.pdf" {
				return FileInfo{}, errors.New("unreadable pdf")
			}
			return FileInfo{Path: path, Name: "ok.pdf", PageCount: 1}, nil
		},
	})
	runner := NewBatchRunner(proc, 2, nil)

	batch := runner.Run(context.Background(), []string{"/in/a.pdf", "/in/broken.pdf", "/in/b.pdf"}, "")

	if batch.Failed != 1 {
		t.Errorf("failed = %d, want 1", batch.Failed)
	}
	if batch.Succeeded != 2 {
		t.Errorf("succeeded = %d, want 2", batch.Succeeded)
	}
	if batch.Results["/in/broken.pdf"].Status != document.StatusFailed {
		t.Error("broken file should carry failed status")
	}
}
