package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	config "github.com/okian/folio/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		Convey("Then the defaults are sane", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.MaxWorkers, ShouldEqual, 5)
			So(cfg.MergeStrategy, ShouldEqual, "merge_best")
			So(cfg.ScoreThresholdRatio, ShouldEqual, 0.8)
			So(cfg.Locale, ShouldEqual, "en")
			So(cfg.MaxResultsPerProvider, ShouldEqual, 10)
			So(cfg.CacheTTLSeconds, ShouldEqual, 900)
		})
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults only", func(t *testing.T) {
		cfg, err := config.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.MaxWorkers != 5 || cfg.MergeStrategy != "merge_best" {
			t.Errorf("unexpected defaults: %+v", cfg)
		}
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("FOLIO_MAX_WORKERS", "9")
		t.Setenv("FOLIO_MERGE_STRATEGY", "first_wins")
		t.Setenv("FOLIO_LOCALE", "de")

		cfg, err := config.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.MaxWorkers != 9 {
			t.Errorf("MaxWorkers = %d, want 9", cfg.MaxWorkers)
		}
		if cfg.MergeStrategy != "first_wins" {
			t.Errorf("MergeStrategy = %q, want first_wins", cfg.MergeStrategy)
		}
		if cfg.Locale != "de" {
			t.Errorf("Locale = %q, want de", cfg.Locale)
		}
	})

	t.Run("file overrides defaults and env overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "folio.yaml")
		yaml := "max_workers: 3\nlocale: fr\nmerge_strategy: merge_all\n"
		if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("FOLIO_CONFIG", path)
		t.Setenv("FOLIO_LOCALE", "it")

		cfg, err := config.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.MaxWorkers != 3 {
			t.Errorf("MaxWorkers = %d, want 3 from file", cfg.MaxWorkers)
		}
		if cfg.MergeStrategy != "merge_all" {
			t.Errorf("MergeStrategy = %q, want merge_all from file", cfg.MergeStrategy)
		}
		if cfg.Locale != "it" {
			t.Errorf("Locale = %q, want it from env", cfg.Locale)
		}
	})

	t.Run("missing config file fails", func(t *testing.T) {
		t.Setenv("FOLIO_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

		if _, err := config.Load(ctx); !errors.Is(err, config.ErrLoadConfig) {
			t.Errorf("Load() error = %v, want ErrLoadConfig", err)
		}
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		cases := map[string]string{
			"FOLIO_MAX_WORKERS":              "0",
			"FOLIO_SCORE_THRESHOLD_RATIO":    "1.5",
			"FOLIO_MAX_RESULTS_PER_PROVIDER": "-1",
		}
		for key, value := range cases {
			t.Run(key, func(t *testing.T) {
				t.Setenv(key, value)
				if _, err := config.Load(ctx); !errors.Is(err, config.ErrInvalidConfig) {
					t.Errorf("Load() with %s=%s error = %v, want ErrInvalidConfig", key, value, err)
				}
			})
		}
	})
}
