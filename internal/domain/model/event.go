package model

import "time"

// Event kind tags. The set is closed: the orchestrator emits exactly
// these six kinds over the lifetime of one search.
const (
	KindSearchStarted     = "search.started"
	KindProviderStarted   = "provider.started"
	KindProviderCompleted = "provider.completed"
	KindProviderFailed    = "provider.failed"
	KindSearchProgress    = "search.progress"
	KindSearchCompleted   = "search.completed"
)

// SearchEvent is implemented by every orchestrator progress event.
// Events are JSON-serializable and delivered through a caller-supplied
// sink; they are never persisted.
type SearchEvent interface {
	EventKind() string
}

// Envelope carries the fields common to every search event.
type Envelope struct {
	Event       string `json:"event"`
	RequestID   string `json:"request_id"`
	TimestampMS int64  `json:"timestamp_ms"`
}

// EventKind returns the event's tag.
func (e Envelope) EventKind() string { return e.Event }

func newEnvelope(kind, requestID string) Envelope {
	return Envelope{
		Event:       kind,
		RequestID:   requestID,
		TimestampMS: time.Now().UnixMilli(),
	}
}

// SearchStarted announces the start of a search across the resolved providers.
type SearchStarted struct {
	Envelope
	Query          string   `json:"query"`
	Locale         string   `json:"locale"`
	ProviderIDs    []string `json:"provider_ids"`
	TotalProviders int      `json:"total_providers"`
}

// ProviderStarted announces that one provider call has begun executing.
type ProviderStarted struct {
	Envelope
	ProviderID   string `json:"provider_id"`
	ProviderName string `json:"provider_name"`
}

// ProviderCompleted is the terminal event for a successful provider call.
type ProviderCompleted struct {
	Envelope
	ProviderID  string `json:"provider_id"`
	ResultCount int    `json:"result_count"`
	DurationMS  int64  `json:"duration_ms"`
}

// ProviderFailed is the terminal event for a failed provider call.
type ProviderFailed struct {
	Envelope
	ProviderID string `json:"provider_id"`
	ErrorType  string `json:"error_type"`
	Message    string `json:"message"`
}

// SearchProgress carries running totals after each provider outcome.
type SearchProgress struct {
	Envelope
	ProvidersCompleted int              `json:"providers_completed"`
	ProvidersFailed    int              `json:"providers_failed"`
	TotalProviders     int              `json:"total_providers"`
	TotalResultsSoFar  int              `json:"total_results_so_far"`
	Results            []MetadataRecord `json:"results"`
}

// SearchCompleted closes the event stream for one search.
type SearchCompleted struct {
	Envelope
	TotalResults       int              `json:"total_results"`
	ProvidersCompleted int              `json:"providers_completed"`
	ProvidersFailed    int              `json:"providers_failed"`
	TotalProviders     int              `json:"total_providers"`
	DurationMS         int64            `json:"duration_ms"`
	Results            []MetadataRecord `json:"results"`
}

// NewSearchStarted builds a search.started event.
func NewSearchStarted(requestID, query, locale string, providerIDs []string) SearchStarted {
	return SearchStarted{
		Envelope:       newEnvelope(KindSearchStarted, requestID),
		Query:          query,
		Locale:         locale,
		ProviderIDs:    providerIDs,
		TotalProviders: len(providerIDs),
	}
}

// NewProviderStarted builds a provider.started event.
func NewProviderStarted(requestID, providerID, providerName string) ProviderStarted {
	return ProviderStarted{
		Envelope:     newEnvelope(KindProviderStarted, requestID),
		ProviderID:   providerID,
		ProviderName: providerName,
	}
}

// NewProviderCompleted builds a provider.completed event.
func NewProviderCompleted(requestID, providerID string, resultCount int, duration time.Duration) ProviderCompleted {
	return ProviderCompleted{
		Envelope:    newEnvelope(KindProviderCompleted, requestID),
		ProviderID:  providerID,
		ResultCount: resultCount,
		DurationMS:  duration.Milliseconds(),
	}
}

// NewProviderFailed builds a provider.failed event.
func NewProviderFailed(requestID, providerID, errorType, message string) ProviderFailed {
	return ProviderFailed{
		Envelope:   newEnvelope(KindProviderFailed, requestID),
		ProviderID: providerID,
		ErrorType:  errorType,
		Message:    message,
	}
}

// NewSearchProgress builds a search.progress event. The results slice is
// copied so later accumulation does not alias into an emitted event.
func NewSearchProgress(requestID string, completed, failed, total int, results []MetadataRecord) SearchProgress {
	return SearchProgress{
		Envelope:           newEnvelope(KindSearchProgress, requestID),
		ProvidersCompleted: completed,
		ProvidersFailed:    failed,
		TotalProviders:     total,
		TotalResultsSoFar:  len(results),
		Results:            append([]MetadataRecord(nil), results...),
	}
}

// NewSearchCompleted builds a search.completed event.
func NewSearchCompleted(requestID string, completed, failed, total int, duration time.Duration, results []MetadataRecord) SearchCompleted {
	return SearchCompleted{
		Envelope:           newEnvelope(KindSearchCompleted, requestID),
		TotalResults:       len(results),
		ProvidersCompleted: completed,
		ProvidersFailed:    failed,
		TotalProviders:     total,
		DurationMS:         duration.Milliseconds(),
		Results:            append([]MetadataRecord(nil), results...),
	}
}
