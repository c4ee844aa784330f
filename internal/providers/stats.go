package providers

import (
	"sync"
	"time"

	"github.com/seongmin-k/tradescan/internal/document"
)

// Stats accumulates per-engine success/failure counters and cumulative
// time. It is the only mutable state shared across concurrently processed
// files, so all access goes through the mutex. It is injected into the
// orchestrator rather than living as a package global.
type Stats struct {
	mu      sync.Mutex
	engines map[document.Engine]*engineCounters
}

type engineCounters struct {
	success   int
	failure   int
	totalTime time.Duration
}

// EngineSnapshot is a read-only view of one engine's counters.
type EngineSnapshot struct {
	SuccessCount   int     `json:"success_count"`
	FailureCount   int     `json:"failure_count"`
	SuccessRate    float64 `json:"success_rate"`
	AverageSeconds float64 `json:"average_time_seconds"`
	TotalSeconds   float64 `json:"total_time_seconds"`
}

// NewStats creates an empty stats accumulator.
func NewStats() *Stats {
	return &Stats{engines: make(map[document.Engine]*engineCounters)}
}

func (s *Stats) counters(engine document.Engine) *engineCounters {
	c, ok := s.engines[engine]
	if !ok {
		c = &engineCounters{}
		s.engines[engine] = c
	}
	return c
}

// RecordSuccess records an accepted extraction and its elapsed time.
func (s *Stats) RecordSuccess(engine document.Engine, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.counters(engine)
	c.success++
	c.totalTime += elapsed
}

// RecordFailure records a failed or rejected extraction attempt.
func (s *Stats) RecordFailure(engine document.Engine, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.counters(engine)
	c.failure++
	c.totalTime += elapsed
}

// Snapshot returns a copy of the current counters. The snapshot is
// diagnostic only; correctness of results never depends on it.
func (s *Stats) Snapshot() map[document.Engine]EngineSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[document.Engine]EngineSnapshot, len(s.engines))
	for engine, c := range s.engines {
		snap := EngineSnapshot{
			SuccessCount: c.success,
			FailureCount: c.failure,
			TotalSeconds: c.totalTime.Seconds(),
		}
		if attempts := c.success + c.failure; attempts > 0 {
			snap.SuccessRate = float64(c.success) / float64(attempts)
		}
		if c.success > 0 {
			snap.AverageSeconds = c.totalTime.Seconds() / float64(c.success)
		}
		out[engine] = snap
	}
	return out
}
