package merge

import "errors"

// Sentinel kinds for merge errors.
var (
	ErrNoCandidates = errors.New("merge requires at least one scored record")
)
