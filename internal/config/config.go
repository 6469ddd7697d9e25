// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Layer file and environment sources on top via Load.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr exposes Prometheus metrics when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// MaxWorkers bounds concurrent provider calls per search.
	MaxWorkers int `koanf:"max_workers"`

	// MergeStrategy selects how scored records are fused:
	// merge_best, first_wins, last_wins, merge_all.
	MergeStrategy string `koanf:"merge_strategy"`

	// ScoreThresholdRatio is the merge_best absorption cutoff relative
	// to the top score.
	ScoreThresholdRatio float64 `koanf:"score_threshold_ratio"`

	// ProviderWeights maps provider ids to score multipliers.
	ProviderWeights map[string]float64 `koanf:"provider_weights"`

	// EnabledProviders restricts searches to these ids; empty means all.
	EnabledProviders []string `koanf:"enabled_providers"`

	// Locale is the default search locale.
	Locale string `koanf:"locale"`

	// MaxResultsPerProvider caps each provider's result list.
	MaxResultsPerProvider int `koanf:"max_results_per_provider"`

	// CacheTTLSeconds and CacheMaxEntries bound the merged-result cache.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`
	CacheMaxEntries int `koanf:"cache_max_entries"`

	// ProviderRPS rate-limits each HTTP provider.
	ProviderRPS float64 `koanf:"provider_rps"`

	// ProviderTimeoutSeconds is the per-request HTTP timeout.
	ProviderTimeoutSeconds int `koanf:"provider_timeout_seconds"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:               "info",
		MetricsAddr:            "",
		MaxWorkers:             5,
		MergeStrategy:          "merge_best",
		ScoreThresholdRatio:    0.8,
		Locale:                 "en",
		MaxResultsPerProvider:  10,
		CacheTTLSeconds:        900,
		CacheMaxEntries:        1024,
		ProviderRPS:            2,
		ProviderTimeoutSeconds: 15,
	}
	return c
}
