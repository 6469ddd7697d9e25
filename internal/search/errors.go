package search

import "errors"

// Sentinel kinds for orchestrator errors.
var (
	// ErrOrchestration marks an unexpected failure inside the
	// coordinator itself, e.g. a panic escaping a provider call.
	ErrOrchestration = errors.New("orchestration failed")
)
