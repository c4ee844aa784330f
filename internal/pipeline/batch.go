package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seongmin-k/tradescan/internal/document"
)

// defaultWorkers bounds batch concurrency when no explicit count is given.
const defaultWorkers = 4

// BatchResult is the outcome of processing a set of files.
type BatchResult struct {
	RunID           string                                `json:"run_id"`
	Results         map[string]*document.ProcessingResult `json:"results"`
	Succeeded       int                                   `json:"succeeded"`
	Failed          int                                   `json:"failed"`
	DurationSeconds float64                               `json:"duration_seconds"`
}

// BatchRunner processes many files over a fixed-size worker pool. A
// failing file never aborts its siblings.
type BatchRunner struct {
	processor *Processor
	workers   int
	logger    *slog.Logger
}

// NewBatchRunner creates a batch runner over the given processor.
func NewBatchRunner(processor *Processor, workers int, logger *slog.Logger) *BatchRunner {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchRunner{processor: processor, workers: workers, logger: logger}
}

// Run processes every path and collects results keyed by file path.
// Concurrency is a counting semaphore: at most `workers` files are in
// flight, each running its own independent pipeline.
func (b *BatchRunner) Run(ctx context.Context, paths []string, preferred document.Engine) *BatchResult {
	start := time.Now()
	runID := uuid.NewString()
	log := b.logger.With("run_id", runID, "files", len(paths), "workers", b.workers)
	log.Info("batch started")

	sem := make(chan struct{}, b.workers)
	results := make(chan *document.ProcessingResult, len(paths))

	var wg sync.WaitGroup
	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results <- b.processor.Process(ctx, path, preferred)
		}(path)
	}
	wg.Wait()
	close(results)

	batch := &BatchResult{
		RunID:   runID,
		Results: make(map[string]*document.ProcessingResult, len(paths)),
	}
	for r := range results {
		batch.Results[r.FilePath] = r
		if r.Status == document.StatusFailed {
			batch.Failed++
		} else {
			batch.Succeeded++
		}
	}
	batch.DurationSeconds = time.Since(start).Seconds()

	log.Info("batch finished",
		"succeeded", batch.Succeeded,
		"failed", batch.Failed,
		"duration", batch.DurationSeconds)
	return batch
}
