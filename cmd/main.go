package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/folio/internal/adapters/cache"
	"github.com/okian/folio/internal/adapters/providers"
	service "github.com/okian/folio/internal/app"
	"github.com/okian/folio/internal/config"
	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/search"
	"github.com/okian/folio/pkg/logger"
	"github.com/okian/folio/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readHeaderTimeout = 5 * time.Second
)

func main() {
	var (
		title    = flag.String("title", "", "Book title to search for")
		authors  = flag.String("authors", "", "Comma-separated author names")
		isbn     = flag.String("isbn", "", "ISBN-10 or ISBN-13")
		locale   = flag.String("locale", "", "Search locale (default from config)")
		provs    = flag.String("providers", "", "Comma-separated provider ids to query (default: all enabled)")
		strategy = flag.String("strategy", "", "Merge strategy override: merge_best, first_wins, last_wins, merge_all")
		events   = flag.Bool("events", false, "Print search events as JSON lines on stderr")
	)
	flag.Parse()

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Optional Prometheus endpoint.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, log)
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.ProviderTimeoutSeconds) * time.Second}
	registry := search.NewRegistry(
		providers.NewOpenLibrary(
			providers.WithHTTPClient(httpClient),
			providers.WithRateLimit(cfg.ProviderRPS),
		),
		providers.NewGoogleBooks(
			providers.WithHTTPClient(httpClient),
			providers.WithRateLimit(cfg.ProviderRPS),
		),
	)

	mergeStrategy := cfg.MergeStrategy
	if *strategy != "" {
		mergeStrategy = *strategy
	}

	enabled := cfg.EnabledProviders
	if *provs != "" {
		enabled = splitList(*provs)
	}

	opts := []service.Option{
		service.WithMaxWorkers(cfg.MaxWorkers),
		service.WithMergeStrategy(mergeStrategy),
		service.WithScoreThresholdRatio(cfg.ScoreThresholdRatio),
		service.WithProviderWeights(cfg.ProviderWeights),
		service.WithResultCache(cache.New(
			cache.WithTTL(time.Duration(cfg.CacheTTLSeconds)*time.Second),
			cache.WithMaxEntries(cfg.CacheMaxEntries),
		)),
		service.WithLogger(log),
	}
	if len(enabled) > 0 {
		opts = append(opts, service.WithEnabledProviders(enabled))
	}
	if *events {
		enc := json.NewEncoder(os.Stderr)
		opts = append(opts, service.WithEventSink(func(ev model.SearchEvent) error {
			return enc.Encode(ev)
		}))
	}

	svc := service.New(registry, opts...)

	query := model.MetadataQuery{
		Title:                 *title,
		Authors:               splitList(*authors),
		ISBN:                  *isbn,
		Locale:                firstNonEmpty(*locale, cfg.Locale),
		MaxResultsPerProvider: cfg.MaxResultsPerProvider,
	}

	if !query.IsValid() {
		os.Stderr.WriteString("at least one of -title, -authors, or -isbn is required\n")
		flag.Usage()
		os.Exit(2)
	}

	rec, err := svc.Fetch(ctx, query)
	if err != nil {
		log.Error(ctx, "fetch failed", logger.Error(err))
		os.Exit(1)
	}
	if rec == nil {
		os.Stderr.WriteString("no metadata found\n")
		os.Exit(1)
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		log.Error(ctx, "encoding result failed", logger.Error(err))
		os.Exit(1)
	}
	os.Stdout.Write(append(out, '\n'))
}

// serveMetrics exposes the custom registry until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), readHeaderTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server failed", logger.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// splitList parses a comma-separated flag value, dropping blanks.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
