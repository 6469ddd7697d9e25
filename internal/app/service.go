// Package service provides the ingest-facing fetch façade: it turns a
// structured metadata query into one merged record by orchestrating the
// provider search, scoring every candidate, and reducing the ranked list.
package service

import (
	"context"
	"sort"
	"time"

	"github.com/okian/folio/internal/adapters/cache"
	"github.com/okian/folio/internal/domain/dedupe"
	"github.com/okian/folio/internal/domain/merge"
	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/scoring"
	"github.com/okian/folio/internal/search"
	"github.com/okian/folio/pkg/logger"
	"github.com/okian/folio/pkg/metrics"
)

// Service implements the fetch entry point the ingest pipeline consumes.
// Metadata enrichment is an optional enhancement to ingest: every
// orchestration-level failure is converted to a "no result" outcome
// rather than propagated.
type Service struct {
	registry     *search.Registry
	orchestrator *search.Orchestrator
	scorer       *scoring.Scorer
	merger       *merge.Merger
	deduper      dedupe.Deduper
	resultCache  *cache.Cache

	// Configuration
	strategy        merge.Strategy
	thresholdRatio  float64
	maxWorkers      int
	enabledIDs      []string
	providerWeights map[string]float64
	cacheDisabled   bool
	sink            search.Sink

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithMergeStrategy selects the merge strategy by name. Unknown names fall
// back to merge_best.
func WithMergeStrategy(name string) Option {
	return func(s *Service) {
		s.strategy = merge.ParseStrategy(name)
	}
}

// WithScoreThresholdRatio sets the merge_best absorption threshold.
func WithScoreThresholdRatio(ratio float64) Option {
	return func(s *Service) {
		if ratio > 0 && ratio <= 1 {
			s.thresholdRatio = ratio
		}
	}
}

// WithMaxWorkers bounds concurrent provider calls.
func WithMaxWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxWorkers = n
		}
	}
}

// WithEnabledProviders restricts searches to the given provider ids.
func WithEnabledProviders(ids []string) Option {
	return func(s *Service) {
		s.enabledIDs = ids
	}
}

// WithProviderWeights sets per-provider score multipliers.
func WithProviderWeights(weights map[string]float64) Option {
	return func(s *Service) {
		s.providerWeights = weights
	}
}

// WithResultCache sets a custom result cache.
func WithResultCache(c *cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.resultCache = c
		}
	}
}

// WithCacheDisabled turns the result cache off.
func WithCacheDisabled() Option {
	return func(s *Service) {
		s.cacheDisabled = true
	}
}

// WithEventSink forwards every search event to sink.
func WithEventSink(sink search.Sink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs the fetch service over the given provider registry.
func New(registry *search.Registry, opts ...Option) *Service {
	s := &Service{
		registry:       registry,
		strategy:       merge.StrategyMergeBest,
		thresholdRatio: 0.8,
		maxWorkers:     5,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("fetch")
	}
	s.orchestrator = search.New(registry,
		search.WithMaxWorkers(s.maxWorkers),
		search.WithLogger(s.logger.Named("orchestrator")),
	)
	s.scorer = scoring.New(scoring.WithProviderWeights(s.providerWeights))
	s.merger = merge.New(merge.WithThresholdRatio(s.thresholdRatio))
	s.deduper = dedupe.New()
	if s.resultCache == nil && !s.cacheDisabled {
		s.resultCache = cache.New()
	}

	return s
}

// Fetch resolves q to a single merged record, or nil when nothing usable
// was found. It never returns an error for provider or orchestration
// failures; ingest proceeds without metadata instead of aborting.
func (s *Service) Fetch(ctx context.Context, q model.MetadataQuery) (*model.MetadataRecord, error) {
	q = q.Normalize()
	if !q.IsValid() {
		s.logger.Debug(ctx, "rejecting invalid query: no title, authors, or isbn")
		metrics.RecordFetchNoResult()
		return nil, nil
	}

	searchStr := q.SearchString()
	cacheKey := q.Locale + "\x00" + searchStr

	if s.resultCache != nil && !s.cacheDisabled {
		if rec, ok := s.resultCache.Get(ctx, cacheKey); ok {
			return &rec, nil
		}
	}

	records, err := s.orchestrator.Search(ctx, searchStr,
		search.WithLocale(q.Locale),
		search.WithMaxResults(q.MaxResultsPerProvider),
		search.WithEnabledProviders(s.enabledIDs),
		search.WithSink(s.sink),
	)
	if err != nil {
		// Orchestration failures degrade to "no metadata found".
		s.logger.Error(ctx, "metadata search failed", logger.String("query", searchStr), logger.Error(err))
		metrics.RecordFetchNoResult()
		return nil, nil
	}

	records = s.deduper.Filter(ctx, records)
	if len(records) == 0 {
		metrics.RecordFetchNoResult()
		return nil, nil
	}

	scored := s.scoreAndRank(records, q)
	merged, err := s.merger.Merge(scored, s.strategy)
	if err != nil {
		s.logger.Error(ctx, "merge failed", logger.Error(err))
		metrics.RecordFetchNoResult()
		return nil, nil
	}

	if s.resultCache != nil && !s.cacheDisabled {
		s.resultCache.Put(ctx, cacheKey, merged)
	}

	s.logger.Info(ctx, "metadata fetched",
		logger.String("title", merged.Title),
		logger.String("source", merged.SourceID),
		logger.Int("candidates", len(records)),
		logger.Float64("top_score", scored[0].Score),
	)
	return &merged, nil
}

// Search exposes the orchestrator directly for callers that need the raw
// result list and typed errors, such as interactive lookups.
func (s *Service) Search(ctx context.Context, query string, opts ...search.SearchOption) ([]model.MetadataRecord, error) {
	return s.orchestrator.Search(ctx, query, opts...)
}

// Providers returns the registered provider ids.
func (s *Service) Providers() []string {
	return s.registry.IDs()
}

// scoreAndRank scores every record against the structured query and sorts
// descending by score. The sort is stable so equal-scored records keep
// their arrival order.
func (s *Service) scoreAndRank(records []model.MetadataRecord, q model.MetadataQuery) []model.ScoredRecord {
	start := time.Now()
	scored := make([]model.ScoredRecord, 0, len(records))
	for _, rec := range records {
		scored = append(scored, model.ScoredRecord{
			Record: rec,
			Score:  s.scorer.Score(rec, q),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	return scored
}
