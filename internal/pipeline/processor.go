package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/seongmin-k/tradescan/internal/classify"
	"github.com/seongmin-k/tradescan/internal/document"
	"github.com/seongmin-k/tradescan/internal/fields"
)

// defaultFileTimeout bounds the whole per-file pipeline across all
// providers and stages.
const defaultFileTimeout = 10 * time.Minute

// Processor runs the full per-file pipeline: validate, extract text,
// score pages, detect boundaries, extract fields, assemble the result.
type Processor struct {
	orchestrator *Orchestrator
	scorer       *classify.PageScorer
	detector     *classify.BoundaryDetector
	extractor    *fields.Extractor
	validate     Validator
	fileTimeout  time.Duration
	logger       *slog.Logger
}

// ProcessorConfig configures a Processor. Zero-value fields fall back to
// production defaults.
type ProcessorConfig struct {
	Orchestrator *Orchestrator
	Validator    Validator
	FileTimeout  time.Duration
	Logger       *slog.Logger
}

// NewProcessor assembles the pipeline.
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.Validator == nil {
		cfg.Validator = ValidatePDF
	}
	if cfg.FileTimeout <= 0 {
		cfg.FileTimeout = defaultFileTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Processor{
		orchestrator: cfg.Orchestrator,
		scorer:       classify.NewPageScorer(),
		detector:     classify.NewBoundaryDetector(fields.Identifier, cfg.Logger),
		extractor:    fields.NewExtractor(),
		validate:     cfg.Validator,
		fileTimeout:  cfg.FileTimeout,
		logger:       cfg.Logger,
	}
}

// Process runs the pipeline on one file. The returned result is always
// non-nil and terminal; pipeline failures are reported inside it, not as
// a second error value, so batch callers treat every file uniformly.
func (p *Processor) Process(ctx context.Context, path string, preferred document.Engine) *document.ProcessingResult {
	ctx, cancel := context.WithTimeout(ctx, p.fileTimeout)
	defer cancel()

	info, err := p.validate(path)
	result := document.NewProcessingResult(path, info.Name)
	if err != nil {
		result.FileName = filepath.Base(path)
		result.AddError(err.Error())
		p.finish(result, document.StatusFailed)
		return result
	}
	result.TotalPages = info.PageCount

	log := p.logger.With("file", info.Name, "pages", info.PageCount)
	log.Info("processing started")

	extraction, err := p.orchestrator.Extract(ctx, path, preferred)
	if err != nil {
		result.AddError(err.Error())
		p.finish(result, document.StatusFailed)
		log.Error("text extraction failed", "error", err)
		return result
	}
	result.EngineUsed = extraction.Engine
	for _, failed := range extraction.FailedEngines {
		result.AddWarning(fmt.Sprintf("engine %s failed, fell back", failed))
	}

	scores := p.scorer.ScorePages(extraction.Pages)
	spans := p.detector.Detect(extraction.Pages, scores)
	if len(spans) == 0 {
		result.AddWarning("no known document type detected")
	}

	for i := range spans {
		spanPages := pagesInRange(extraction.Pages, spans[i].PageRange)
		spans[i].Fields = p.extractor.Extract(spans[i].DocType, spanPages, extraction.Engine)
	}
	result.Documents = spans

	p.finish(result, document.StatusCompleted)
	log.Info("processing finished",
		"engine", extraction.Engine,
		"documents", len(spans),
		"duration", result.DurationSeconds)
	return result
}

// finish seals the result: duration first, then the terminal status so
// AddError/AddWarning stop accepting input.
func (p *Processor) finish(r *document.ProcessingResult, status document.Status) {
	r.DurationSeconds = time.Since(r.StartedAt).Seconds()
	r.Status = status
}

func pagesInRange(pages []document.PageText, r document.PageRange) []document.PageText {
	var out []document.PageText
	for _, pg := range pages {
		if pg.Number >= r.Start && pg.Number <= r.End {
			out = append(out, pg)
		}
	}
	return out
}
