package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seongmin-k/tradescan/internal/document"
	"github.com/seongmin-k/tradescan/internal/providers"
)

// defaultProviderTimeout bounds a single provider attempt.
const defaultProviderTimeout = 120 * time.Second

// Extraction is the accepted output of the provider chain.
type Extraction struct {
	Engine document.Engine
	Pages  []document.PageText
	// FailedEngines lists providers tried before the accepted one.
	FailedEngines []document.Engine
}

// Orchestrator walks the provider fallback chain for one file at a time.
// Providers run strictly sequentially; the first output exceeding the
// provider's acceptance threshold wins.
type Orchestrator struct {
	registry        *providers.Registry
	stats           *providers.Stats
	providerTimeout time.Duration
	logger          *slog.Logger
}

// OrchestratorConfig configures an Orchestrator.
type OrchestratorConfig struct {
	Registry        *providers.Registry
	Stats           *providers.Stats
	ProviderTimeout time.Duration
	Logger          *slog.Logger
}

// NewOrchestrator creates an orchestrator over the given registry.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Stats == nil {
		cfg.Stats = providers.NewStats()
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaultProviderTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Orchestrator{
		registry:        cfg.Registry,
		stats:           cfg.Stats,
		providerTimeout: cfg.ProviderTimeout,
		logger:          cfg.Logger,
	}
}

// Stats exposes the shared statistics accumulator.
func (o *Orchestrator) Stats() *providers.Stats { return o.stats }

// Extract tries each provider in chain order until one produces accepted
// output. Rejected output (below the provider's threshold) counts as a
// failure and falls through like an error.
func (o *Orchestrator) Extract(ctx context.Context, filePath string, preferred document.Engine) (*Extraction, error) {
	chain := o.registry.Chain(preferred)
	if len(chain) == 0 {
		return nil, fmt.Errorf("no text providers registered")
	}

	var failed []document.Engine
	var lastErr error

	for _, p := range chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		engine := p.Name()
		log := o.logger.With("engine", engine, "file", filePath)

		start := time.Now()
		pages, err := o.extractOne(ctx, p, filePath)
		elapsed := time.Since(start)

		if err != nil {
			o.stats.RecordFailure(engine, elapsed)
			log.Warn("provider failed", "error", err, "elapsed", elapsed)
			failed = append(failed, engine)
			lastErr = err
			continue
		}

		if n := providers.TotalTextLength(pages); n <= p.MinAcceptLength() {
			o.stats.RecordFailure(engine, elapsed)
			log.Warn("provider output below threshold",
				"length", n, "threshold", p.MinAcceptLength())
			failed = append(failed, engine)
			lastErr = fmt.Errorf("%s output too short: %d chars", engine, n)
			continue
		}

		o.stats.RecordSuccess(engine, elapsed)
		log.Info("text extracted", "pages", len(pages), "elapsed", elapsed)

		return &Extraction{
			Engine:        engine,
			Pages:         providers.CleanPages(pages),
			FailedEngines: failed,
		}, nil
	}

	return nil, &AllProvidersExhaustedError{
		Path:     filePath,
		Attempts: len(chain),
		Last:     lastErr,
	}
}

func (o *Orchestrator) extractOne(ctx context.Context, p providers.TextProvider, filePath string) ([]document.PageText, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.providerTimeout)
	defer cancel()
	return p.Extract(attemptCtx, filePath)
}
