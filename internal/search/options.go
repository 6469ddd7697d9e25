// Package search coordinates concurrent metadata searches.
package search

import (
	"github.com/okian/folio/pkg/logger"
)

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithMaxWorkers bounds the number of concurrent provider calls.
func WithMaxWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxWorkers = n
		}
	}
}

// WithLogger sets a custom logger for the orchestrator.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// searchOptions configure a single Search call.
type searchOptions struct {
	providerIDs []string
	enabledIDs  []string
	locale      string
	maxResults  int
	sink        Sink
}

// SearchOption applies a per-call option to Search.
type SearchOption func(*searchOptions)

// WithProviderIDs restricts the search to an explicit provider id list.
// Unknown ids are silently ignored.
func WithProviderIDs(ids ...string) SearchOption {
	return func(so *searchOptions) {
		if so.providerIDs == nil {
			so.providerIDs = []string{}
		}
		so.providerIDs = append(so.providerIDs, ids...)
	}
}

// WithEnabledProviders filters the "all providers" selection down to the
// given enable list. Ignored when an explicit id list is set.
func WithEnabledProviders(ids []string) SearchOption {
	return func(so *searchOptions) {
		so.enabledIDs = ids
	}
}

// WithLocale sets the locale passed to every provider.
func WithLocale(locale string) SearchOption {
	return func(so *searchOptions) {
		if locale != "" {
			so.locale = locale
		}
	}
}

// WithMaxResults caps the result count requested from each provider.
func WithMaxResults(n int) SearchOption {
	return func(so *searchOptions) {
		if n > 0 {
			so.maxResults = n
		}
	}
}

// WithSink sets the event sink for this search.
func WithSink(sink Sink) SearchOption {
	return func(so *searchOptions) {
		so.sink = sink
	}
}
