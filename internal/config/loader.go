package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if FOLIO_CONFIG is set
//  3. env (prefix FOLIO_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("FOLIO_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: FOLIO_MAX_WORKERS, FOLIO_MERGE_STRATEGY, ...
	// Map env keys like FOLIO_MAX_WORKERS -> max_workers (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("FOLIO_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "folio_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("%w: max_workers must be positive", ErrInvalidConfig)
	}
	if c.ScoreThresholdRatio <= 0 || c.ScoreThresholdRatio > 1 {
		return fmt.Errorf("%w: score_threshold_ratio must be in (0,1]", ErrInvalidConfig)
	}
	if c.MaxResultsPerProvider <= 0 {
		return fmt.Errorf("%w: max_results_per_provider must be positive", ErrInvalidConfig)
	}
	for id, w := range c.ProviderWeights {
		if w <= 0 {
			return fmt.Errorf("%w: provider_weights[%s] must be positive", ErrInvalidConfig, id)
		}
	}
	return nil
}
