// Command demo runs one search against simulated providers and prints the
// live event stream as JSON lines. Useful for eyeballing event ordering,
// failure isolation, and cancellation without touching real APIs.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/provider"
	"github.com/okian/folio/internal/search"
	"github.com/okian/folio/pkg/logger"
)

// Default demo configuration constants.
const (
	defaultWorkers = 3
	defaultTimeout = 5 * time.Second
)

// simProvider simulates a metadata source with fixed latency and an
// optional permanent failure.
type simProvider struct {
	id      string
	name    string
	latency time.Duration
	fail    error
	records []model.MetadataRecord
}

func (p *simProvider) Info() provider.SourceInfo {
	return provider.SourceInfo{ID: p.id, Name: p.name, Description: "simulated source"}
}

func (p *simProvider) Search(ctx context.Context, _, _ string, _ int) ([]model.MetadataRecord, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(p.latency):
	}
	if p.fail != nil {
		return nil, p.fail
	}
	return p.records, nil
}

func simRecord(sourceID, title string, authors ...string) model.MetadataRecord {
	return model.MetadataRecord{
		SourceID:   sourceID,
		ExternalID: sourceID + "-1",
		Title:      title,
		Authors:    authors,
	}
}

func main() {
	var (
		query   = flag.String("query", "Dune Frank Herbert", "Search query")
		workers = flag.Int("workers", defaultWorkers, "Concurrent provider calls")
		timeout = flag.Duration("timeout", defaultTimeout, "Overall search deadline")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	registry := search.NewRegistry(
		&simProvider{
			id: "alpha", name: "Alpha Books", latency: 120 * time.Millisecond,
			records: []model.MetadataRecord{simRecord("alpha", "Dune", "Frank Herbert")},
		},
		&simProvider{
			id: "beta", name: "Beta Catalog", latency: 300 * time.Millisecond,
			records: []model.MetadataRecord{simRecord("beta", "Dune Messiah", "Frank Herbert")},
		},
		&simProvider{
			id: "gamma", name: "Gamma Archive", latency: 80 * time.Millisecond,
			fail: fmt.Errorf("upstream unreachable: %w", provider.ErrNetwork),
		},
		&simProvider{
			id: "delta", name: "Delta Index", latency: 600 * time.Millisecond,
			records: []model.MetadataRecord{simRecord("delta", "Dune", "F. Herbert")},
		},
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	enc := json.NewEncoder(os.Stdout)
	orchestrator := search.New(registry, search.WithMaxWorkers(*workers))

	results, err := orchestrator.Search(ctx, *query,
		search.WithSink(func(ev model.SearchEvent) error {
			return enc.Encode(ev)
		}),
	)
	if err != nil {
		os.Stderr.WriteString("search failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "search returned %d records\n", len(results))
}
