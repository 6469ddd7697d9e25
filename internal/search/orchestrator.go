// Package search coordinates concurrent metadata searches across every
// enabled provider: bounded fan-out, partial failure isolation,
// cooperative cancellation, and a live progress event stream.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/provider"
	"github.com/okian/folio/pkg/logger"
	"github.com/okian/folio/pkg/metrics"
)

// Default orchestrator configuration constants.
const (
	defaultMaxWorkers = 5
)

// Sink receives search events as outcomes become known. Sink errors and
// panics are swallowed at the call site; a misbehaving consumer must never
// abort a search.
type Sink func(event model.SearchEvent) error

// Orchestrator fans one query out to the registered providers and fans
// the results back in. All counter mutation and event emission happens on
// the collector loop; workers only send typed outcome messages.
type Orchestrator struct {
	registry   *Registry
	maxWorkers int
	logger     logger.Logger
}

// New creates an orchestrator over registry with configuration options.
func New(registry *Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:   registry,
		maxWorkers: defaultMaxWorkers,
	}

	// Apply all options
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = logger.Get().Named("search")
	}

	return o
}

// message kinds flowing from workers to the collector.
type outcomeKind int

const (
	outcomeStarted outcomeKind = iota
	outcomeFinished
	outcomeSkipped // cancelled before the call ever started; no events
)

type outcome struct {
	kind     outcomeKind
	info     provider.SourceInfo
	records  []model.MetadataRecord
	err      error
	duration time.Duration
}

// Search runs query against the selected providers concurrently and
// returns the union of all successful results. A blank query returns an
// empty result without starting any provider or emitting any event.
// Cancellation via ctx is cooperative: calls not yet started are never
// started, in-flight calls are cancelled best-effort, and whatever results
// had already completed are returned.
//
// Ordering across providers is not meaningful; within one provider's
// results the provider's own ordering is preserved.
func (o *Orchestrator) Search(ctx context.Context, query string, opts ...SearchOption) ([]model.MetadataRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	so := searchOptions{
		locale:     model.DefaultLocale,
		maxResults: model.DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(&so)
	}

	selected := o.registry.Resolve(so.providerIDs, so.enabledIDs)
	requestID := uuid.NewString()
	start := time.Now()

	metrics.RecordSearchStarted()

	ids := make([]string, 0, len(selected))
	for _, p := range selected {
		ids = append(ids, p.Info().ID)
	}
	o.emit(ctx, so.sink, model.NewSearchStarted(requestID, query, so.locale, ids))

	o.logger.Debug(ctx, "search started",
		logger.String("request_id", requestID),
		logger.String("query", query),
		logger.Int("providers", len(selected)),
	)

	results := o.collect(ctx, requestID, query, selected, so)

	elapsed := time.Since(start)
	metrics.RecordSearchCompleted(float64(elapsed.Milliseconds()), len(results.records))
	o.emit(ctx, so.sink, model.NewSearchCompleted(requestID, results.completed, results.failed, len(selected), elapsed, results.records))

	o.logger.Debug(ctx, "search completed",
		logger.String("request_id", requestID),
		logger.Int("results", len(results.records)),
		logger.Int("completed", results.completed),
		logger.Int("failed", results.failed),
		logger.Duration("elapsed", elapsed),
	)

	return results.records, nil
}

// tally is the collector's accumulator. It is owned by a single goroutine;
// nothing here needs a lock.
type tally struct {
	records   []model.MetadataRecord
	completed int
	failed    int
}

// collect dispatches the provider calls onto the bounded worker pool and
// folds their outcomes on the calling goroutine until every selected
// provider reached a terminal state or ctx was cancelled.
func (o *Orchestrator) collect(ctx context.Context, requestID, query string, selected []provider.Provider, so searchOptions) tally {
	var t tally
	total := len(selected)
	if total == 0 {
		t.records = []model.MetadataRecord{}
		return t
	}

	// Buffered for one started plus one terminal message per provider so
	// in-flight workers never block after a cancelled search returns.
	msgs := make(chan outcome, total*2)
	sem := make(chan struct{}, o.maxWorkers)

	go o.dispatch(ctx, query, selected, so, msgs, sem)

	terminal := 0
	for terminal < total {
		select {
		case <-ctx.Done():
			// Cancelled: return immediately with what completed so far.
			// In-flight workers still get their outcomes accounted so the
			// active-call gauge comes back down.
			o.logger.Debug(ctx, "search cancelled",
				logger.String("request_id", requestID),
				logger.Int("terminal", terminal),
				logger.Int("total", total),
			)
			go drainOutcomes(msgs, total-terminal)
			return t
		case m := <-msgs:
			switch m.kind {
			case outcomeStarted:
				metrics.RecordProviderStarted()
				o.emit(ctx, so.sink, model.NewProviderStarted(requestID, m.info.ID, m.info.Name))
			case outcomeSkipped:
				terminal++
			case outcomeFinished:
				terminal++
				latencyMs := float64(m.duration.Milliseconds())
				if m.err != nil {
					t.failed++
					kind := provider.KindOf(m.err)
					metrics.RecordProviderOutcome(m.info.ID, "failed", latencyMs)
					metrics.RecordProviderFailure(m.info.ID, kind)
					o.logger.Warn(ctx, "provider failed",
						logger.String("request_id", requestID),
						logger.String("provider", m.info.ID),
						logger.String("kind", kind),
						logger.Error(m.err),
					)
					o.emit(ctx, so.sink, model.NewProviderFailed(requestID, m.info.ID, kind, m.err.Error()))
				} else {
					t.completed++
					t.records = append(t.records, m.records...)
					metrics.RecordProviderOutcome(m.info.ID, "completed", latencyMs)
					o.emit(ctx, so.sink, model.NewProviderCompleted(requestID, m.info.ID, len(m.records), m.duration))
				}
				o.emit(ctx, so.sink, model.NewSearchProgress(requestID, t.completed, t.failed, total, t.records))
			}
		}
	}

	if t.records == nil {
		t.records = []model.MetadataRecord{}
	}
	return t
}

// drainOutcomes consumes the terminal messages still owed by workers and
// the dispatcher after a cancelled search, recording metrics only. No
// events are emitted; the stream already closed.
func drainOutcomes(msgs <-chan outcome, remaining int) {
	for remaining > 0 {
		m := <-msgs
		switch m.kind {
		case outcomeStarted:
			metrics.RecordProviderStarted()
		case outcomeSkipped:
			remaining--
		case outcomeFinished:
			remaining--
			latencyMs := float64(m.duration.Milliseconds())
			if m.err != nil {
				metrics.RecordProviderOutcome(m.info.ID, "failed", latencyMs)
				metrics.RecordProviderFailure(m.info.ID, provider.KindOf(m.err))
			} else {
				metrics.RecordProviderOutcome(m.info.ID, "completed", latencyMs)
			}
		}
	}
}

// dispatch feeds providers into the bounded pool. Providers that never
// acquire a slot before cancellation are reported as skipped so the
// collector's accounting still closes.
func (o *Orchestrator) dispatch(ctx context.Context, query string, selected []provider.Provider, so searchOptions, msgs chan<- outcome, sem chan struct{}) {
	for _, p := range selected {
		select {
		case <-ctx.Done():
			msgs <- outcome{kind: outcomeSkipped, info: p.Info()}
			continue
		case sem <- struct{}{}:
		}
		if ctx.Err() != nil {
			<-sem
			msgs <- outcome{kind: outcomeSkipped, info: p.Info()}
			continue
		}

		go func(p provider.Provider) {
			defer func() { <-sem }()
			info := p.Info()
			msgs <- outcome{kind: outcomeStarted, info: info}

			began := time.Now()
			records, err := o.callProvider(ctx, p, query, so.locale, so.maxResults)
			msgs <- outcome{
				kind:     outcomeFinished,
				info:     info,
				records:  records,
				err:      err,
				duration: time.Since(began),
			}
		}(p)
	}
}

// callProvider invokes one untrusted provider, containing panics and
// discarding records that lack the minimum useful payload.
func (o *Orchestrator) callProvider(ctx context.Context, p provider.Provider, query, locale string, maxResults int) (records []model.MetadataRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("provider %s panicked: %v: %w", p.Info().ID, r, ErrOrchestration)
		}
	}()

	raw, err := p.Search(ctx, query, locale, maxResults)
	if err != nil {
		return nil, err
	}

	// Filter into a fresh slice; the provider may retain and reuse the
	// one it returned.
	records = make([]model.MetadataRecord, 0, len(raw))
	for _, rec := range raw {
		if !rec.Usable() {
			o.logger.Debug(ctx, "dropping unusable record", logger.String("provider", p.Info().ID))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// emit delivers one event to the sink, swallowing sink errors and panics.
func (o *Orchestrator) emit(ctx context.Context, sink Sink, event model.SearchEvent) {
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn(ctx, "event sink panicked", logger.Any("panic", r), logger.String("event", event.EventKind()))
		}
	}()
	if err := sink(event); err != nil {
		o.logger.Debug(ctx, "event sink error", logger.String("event", event.EventKind()), logger.Error(err))
	}
}
