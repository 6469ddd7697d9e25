// Package provider defines the capability contract every metadata source
// implements. The orchestrator treats implementations as untrusted: a
// provider may block on network I/O, time out, or fail outright, and must
// report that through a classifiable error rather than malformed data.
package provider

import (
	"context"

	"github.com/okian/folio/internal/domain/model"
)

// SourceInfo describes a provider. Info is cheap and performs no I/O.
type SourceInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	BaseURL     string `json:"base_url,omitempty"`
}

// Provider is the narrow contract the search orchestrator consumes.
type Provider interface {
	// Info returns static source metadata.
	Info() SourceInfo

	// Search returns zero or more candidate records for the query.
	// Implementations honor ctx for cancellation and wrap failures in
	// one of this package's sentinel error kinds.
	Search(ctx context.Context, query, locale string, maxResults int) ([]model.MetadataRecord, error)
}
