package providers

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/seongmin-k/tradescan/internal/document"
)

// Registry holds the configured text providers and builds the ordered
// fallback chain. Thread-safe: config hot-reload swaps providers while
// files are being processed.
type Registry struct {
	mu        sync.RWMutex
	providers map[document.Engine]TextProvider
	logger    *slog.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[document.Engine]TextProvider),
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register adds or replaces a provider.
func (r *Registry) Register(p TextProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
	if r.logger != nil {
		r.logger.Info("registered text provider", "engine", p.Name())
	}
}

// Unregister removes a provider by engine name.
func (r *Registry) Unregister(engine document.Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, engine)
	if r.logger != nil {
		r.logger.Info("unregistered text provider", "engine", engine)
	}
}

// Get returns a provider by engine name.
func (r *Registry) Get(engine document.Engine) (TextProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[engine]
	if !ok {
		return nil, fmt.Errorf("text provider not found: %s", engine)
	}
	return p, nil
}

// Has checks whether an engine is registered.
func (r *Registry) Has(engine document.Engine) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[engine]
	return ok
}

// List returns the registered engine names in default priority order.
func (r *Registry) List() []document.Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []document.Engine
	for _, engine := range document.DefaultEngineOrder {
		if _, ok := r.providers[engine]; ok {
			out = append(out, engine)
		}
	}
	return out
}

// Chain returns the registered providers in attempt order: preferred
// first (when registered), then the rest in default priority order.
// Ordering within one file is strictly sequential, so paid providers are
// never raced speculatively.
func (r *Registry) Chain(preferred document.Engine) []TextProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var chain []TextProvider
	if p, ok := r.providers[preferred]; ok {
		chain = append(chain, p)
	}
	for _, engine := range document.DefaultEngineOrder {
		if engine == preferred {
			continue
		}
		if p, ok := r.providers[engine]; ok {
			chain = append(chain, p)
		}
	}
	return chain
}
