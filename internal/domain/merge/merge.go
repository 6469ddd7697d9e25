// Package merge reduces a ranked list of scored records into one fused
// record according to a selected strategy.
package merge

import (
	"fmt"

	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/pkg/metrics"
)

// Strategy selects how many records contribute fields to the fused output.
type Strategy string

// Known strategies.
const (
	// StrategyMergeBest uses the top record as the base and folds in
	// fields from every record whose score is within the threshold
	// ratio of the top score. This is the default.
	StrategyMergeBest Strategy = "merge_best"
	// StrategyFirstWins returns the top-scored record verbatim.
	StrategyFirstWins Strategy = "first_wins"
	// StrategyLastWins returns the lowest-scored record verbatim.
	StrategyLastWins Strategy = "last_wins"
	// StrategyMergeAll folds in every record regardless of score.
	StrategyMergeAll Strategy = "merge_all"
)

const defaultThresholdRatio = 0.8

// ParseStrategy maps a configuration string to a Strategy. Unknown names
// fall back to merge_best rather than erroring; this matches the observed
// behavior callers depend on.
func ParseStrategy(s string) Strategy {
	switch Strategy(s) {
	case StrategyFirstWins, StrategyLastWins, StrategyMergeAll, StrategyMergeBest:
		return Strategy(s)
	default:
		return StrategyMergeBest
	}
}

// Merger fuses scored records. Construct with New.
type Merger struct {
	thresholdRatio float64
}

// New creates a merger with configuration options.
func New(opts ...Option) *Merger {
	m := &Merger{
		thresholdRatio: defaultThresholdRatio,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Merge reduces scored, which must be sorted by descending score, into a
// single record. Returns ErrNoCandidates for an empty input; that is a
// caller bug, not a runtime condition.
func (m *Merger) Merge(scored []model.ScoredRecord, strategy Strategy) (model.MetadataRecord, error) {
	if len(scored) == 0 {
		metrics.RecordMergeError()
		return model.MetadataRecord{}, fmt.Errorf("merge %s: %w", strategy, ErrNoCandidates)
	}

	metrics.RecordMerge(string(strategy))

	switch strategy {
	case StrategyFirstWins:
		return scored[0].Record.Clone(), nil
	case StrategyLastWins:
		return scored[len(scored)-1].Record.Clone(), nil
	case StrategyMergeAll:
		return m.fold(scored, func(model.ScoredRecord) bool { return true }), nil
	case StrategyMergeBest:
		fallthrough
	default:
		threshold := scored[0].Score * m.thresholdRatio
		return m.fold(scored, func(sr model.ScoredRecord) bool { return sr.Score >= threshold }), nil
	}
}

// fold builds the merged record from the top record plus every later
// record admitted by keep, in rank order.
func (m *Merger) fold(scored []model.ScoredRecord, keep func(model.ScoredRecord) bool) model.MetadataRecord {
	merged := scored[0].Record.Clone()
	for _, sr := range scored[1:] {
		if !keep(sr) {
			continue
		}
		absorb(&merged, sr.Record)
	}
	return merged
}

// absorb folds one lower-ranked record into the working merged record.
// Title, SourceID, ExternalID, and URL always stay with the base record.
func absorb(dst *model.MetadataRecord, src model.MetadataRecord) {
	dst.Authors = unionStrings(dst.Authors, src.Authors)
	dst.Languages = unionStrings(dst.Languages, src.Languages)
	dst.Tags = unionStrings(dst.Tags, src.Tags)

	// Longer description wins, regardless of rank.
	if len(src.Description) > len(dst.Description) {
		dst.Description = src.Description
	}

	// First non-empty wins; ranks are processed best-first, so the
	// highest-scoring source that had a value keeps it.
	if dst.CoverURL == "" {
		dst.CoverURL = src.CoverURL
	}
	if dst.Publisher == "" {
		dst.Publisher = src.Publisher
	}
	if dst.PublishedDate == "" {
		dst.PublishedDate = src.PublishedDate
	}

	// SeriesIndex travels with Series and is fixed the moment Series is
	// first set.
	if dst.Series == "" && src.Series != "" {
		dst.Series = src.Series
		dst.SeriesIndex = src.SeriesIndex
	}

	if src.Rating > dst.Rating {
		dst.Rating = src.Rating
	}

	if len(src.Identifiers) > 0 {
		if dst.Identifiers == nil {
			dst.Identifiers = make(map[string]string, len(src.Identifiers))
		}
		for scheme, value := range src.Identifiers {
			if _, ok := dst.Identifiers[scheme]; !ok {
				dst.Identifiers[scheme] = value
			}
		}
	}
}

// unionStrings appends items from add not already in base, preserving
// first-seen order.
func unionStrings(base, add []string) []string {
	if len(add) == 0 {
		return base
	}
	seen := make(map[string]struct{}, len(base))
	for _, s := range base {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		base = append(base, s)
	}
	return base
}
