// Package pipeline wires validation, provider fallback, classification and
// field extraction into the per-file processing flow, plus a bounded-pool
// batch runner on top of it.
package pipeline

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks failures of the pre-flight input checks.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports a file that was rejected before any provider
// ran.
type InvalidInputError struct {
	Path   string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Path, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// AllProvidersExhaustedError reports that every provider in the chain
// failed or produced under-threshold output for a file.
type AllProvidersExhaustedError struct {
	Path     string
	Attempts int
	Last     error
}

func (e *AllProvidersExhaustedError) Error() string {
	return fmt.Sprintf("all %d text providers exhausted for %s: %v", e.Attempts, e.Path, e.Last)
}

func (e *AllProvidersExhaustedError) Unwrap() error { return e.Last }
