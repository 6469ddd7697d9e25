package search_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	model "github.com/okian/folio/internal/domain/model"
	provider "github.com/okian/folio/internal/domain/provider"
	search "github.com/okian/folio/internal/search"
	"github.com/okian/folio/pkg/logger"
	"github.com/okian/folio/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

// activeProviderCalls reads the in-flight provider call gauge from the
// shared registry.
func activeProviderCalls() float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, f := range families {
		if f.GetName() == "folio_search_active_provider_calls" {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return 0
}

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeProvider is a scriptable provider for orchestrator tests.
type fakeProvider struct {
	id      string
	records []model.MetadataRecord
	err     error
	delay   time.Duration
	panics  bool
	calls   atomic.Int64
}

func newFakeProvider(id string, records []model.MetadataRecord, err error) *fakeProvider {
	return &fakeProvider{id: id, records: records, err: err}
}

func (p *fakeProvider) Info() provider.SourceInfo {
	return provider.SourceInfo{ID: p.id, Name: "Fake " + p.id}
}

func (p *fakeProvider) Search(ctx context.Context, _, _ string, _ int) ([]model.MetadataRecord, error) {
	p.calls.Add(1)
	if p.panics {
		panic("scripted panic")
	}
	if p.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.delay):
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.records, nil
}

func record(sourceID, title string) model.MetadataRecord {
	return model.MetadataRecord{SourceID: sourceID, ExternalID: sourceID + "-" + title, Title: title}
}

// eventRecorder collects emitted events. The orchestrator emits from a
// single goroutine, but the recorder locks anyway so tests can read
// concurrently with a running search.
type eventRecorder struct {
	mu     sync.Mutex
	events []model.SearchEvent
}

func (r *eventRecorder) sink() search.Sink {
	return func(ev model.SearchEvent) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, ev)
		return nil
	}
}

func (r *eventRecorder) all() []model.SearchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.SearchEvent(nil), r.events...)
}

func (r *eventRecorder) byKind(kind string) []model.SearchEvent {
	var out []model.SearchEvent
	for _, ev := range r.all() {
		if ev.EventKind() == kind {
			out = append(out, ev)
		}
	}
	return out
}

func TestOrchestrator_Search(t *testing.T) {
	Convey("Given an orchestrator over three healthy providers", t, func() {
		registry := search.NewRegistry(
			newFakeProvider("alpha", []model.MetadataRecord{record("alpha", "Dune"), record("alpha", "Dune Messiah")}, nil),
			newFakeProvider("beta", []model.MetadataRecord{record("beta", "Dune")}, nil),
			newFakeProvider("gamma", []model.MetadataRecord{record("gamma", "Children of Dune")}, nil),
		)
		orchestrator := search.New(registry)
		rec := &eventRecorder{}

		Convey("When searching", func() {
			results, err := orchestrator.Search(context.Background(), "dune", search.WithSink(rec.sink()))

			Convey("Then all provider results are pooled", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 4)
			})

			Convey("Then the event stream is complete and well-formed", func() {
				So(rec.byKind(model.KindSearchStarted), ShouldHaveLength, 1)
				So(rec.byKind(model.KindProviderStarted), ShouldHaveLength, 3)
				So(rec.byKind(model.KindProviderCompleted), ShouldHaveLength, 3)
				So(rec.byKind(model.KindProviderFailed), ShouldHaveLength, 0)
				So(rec.byKind(model.KindSearchProgress), ShouldHaveLength, 3)
				So(rec.byKind(model.KindSearchCompleted), ShouldHaveLength, 1)

				all := rec.all()
				So(all[0].EventKind(), ShouldEqual, model.KindSearchStarted)
				So(all[len(all)-1].EventKind(), ShouldEqual, model.KindSearchCompleted)

				started := all[0].(model.SearchStarted)
				So(started.TotalProviders, ShouldEqual, 3)
				So(started.Query, ShouldEqual, "dune")

				completed := all[len(all)-1].(model.SearchCompleted)
				So(completed.TotalResults, ShouldEqual, 4)
				So(completed.ProvidersCompleted, ShouldEqual, 3)
				So(completed.ProvidersFailed, ShouldEqual, 0)
				So(completed.TotalProviders, ShouldEqual, 3)
			})

			Convey("Then progress totals climb to the final count", func() {
				progress := rec.byKind(model.KindSearchProgress)
				last := progress[len(progress)-1].(model.SearchProgress)
				So(last.ProvidersCompleted+last.ProvidersFailed, ShouldEqual, 3)
				So(last.TotalResultsSoFar, ShouldEqual, 4)

				prev := 0
				for _, ev := range progress {
					p := ev.(model.SearchProgress)
					So(p.TotalResultsSoFar, ShouldBeGreaterThanOrEqualTo, prev)
					prev = p.TotalResultsSoFar
				}
			})
		})

		Convey("When searching with a blank query", func() {
			results, err := orchestrator.Search(context.Background(), "   ", search.WithSink(rec.sink()))

			Convey("Then nothing runs and nothing is emitted", func() {
				So(err, ShouldBeNil)
				So(results, ShouldBeNil)
				So(rec.all(), ShouldHaveLength, 0)
			})
		})

		Convey("When searching without a sink", func() {
			results, err := orchestrator.Search(context.Background(), "dune")

			Convey("Then the search still completes", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 4)
			})
		})

		Convey("When restricting to an explicit provider list", func() {
			results, err := orchestrator.Search(context.Background(), "dune",
				search.WithProviderIDs("beta", "missing"),
				search.WithSink(rec.sink()),
			)

			Convey("Then only the named provider runs", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 1)
				So(results[0].SourceID, ShouldEqual, "beta")
				So(rec.byKind(model.KindProviderStarted), ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given one provider that fails", t, func() {
		failing := newFakeProvider("broken", nil, fmt.Errorf("dial tcp: %w", provider.ErrNetwork))
		registry := search.NewRegistry(
			newFakeProvider("alpha", []model.MetadataRecord{record("alpha", "Dune")}, nil),
			failing,
		)
		orchestrator := search.New(registry)
		rec := &eventRecorder{}

		Convey("When searching", func() {
			results, err := orchestrator.Search(context.Background(), "dune", search.WithSink(rec.sink()))

			Convey("Then the failure is isolated from the healthy provider", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 1)
				So(results[0].SourceID, ShouldEqual, "alpha")
			})

			Convey("Then the failure is reported with its classified kind", func() {
				failed := rec.byKind(model.KindProviderFailed)
				So(failed, ShouldHaveLength, 1)
				ev := failed[0].(model.ProviderFailed)
				So(ev.ProviderID, ShouldEqual, "broken")
				So(ev.ErrorType, ShouldEqual, provider.KindNetwork)

				completed := rec.byKind(model.KindSearchCompleted)[0].(model.SearchCompleted)
				So(completed.ProvidersCompleted, ShouldEqual, 1)
				So(completed.ProvidersFailed, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a provider that panics", t, func() {
		panicky := newFakeProvider("explosive", nil, nil)
		panicky.panics = true
		registry := search.NewRegistry(
			newFakeProvider("alpha", []model.MetadataRecord{record("alpha", "Dune")}, nil),
			panicky,
		)
		orchestrator := search.New(registry)
		rec := &eventRecorder{}

		Convey("When searching", func() {
			results, err := orchestrator.Search(context.Background(), "dune", search.WithSink(rec.sink()))

			Convey("Then the panic is contained as a provider failure", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 1)

				failed := rec.byKind(model.KindProviderFailed)
				So(failed, ShouldHaveLength, 1)
				So(failed[0].(model.ProviderFailed).ProviderID, ShouldEqual, "explosive")
			})
		})
	})

	Convey("Given a provider returning unusable records", t, func() {
		registry := search.NewRegistry(
			newFakeProvider("mixed", []model.MetadataRecord{
				record("mixed", "Dune"),
				{SourceID: "mixed", ExternalID: "no-title"},
				record("mixed", "Dune Messiah"),
			}, nil),
		)
		orchestrator := search.New(registry)

		Convey("When searching", func() {
			results, err := orchestrator.Search(context.Background(), "dune")

			Convey("Then title-less records are dropped", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 2)
				for _, r := range results {
					So(r.Title, ShouldNotBeEmpty)
				}
			})
		})
	})

	Convey("Given a provider that reuses its result slice across calls", t, func() {
		shared := []model.MetadataRecord{
			{SourceID: "reuse", ExternalID: "reuse-1"}, // title-less, filtered out
			record("reuse", "Dune"),
			record("reuse", "Dune Messiah"),
		}
		registry := search.NewRegistry(newFakeProvider("reuse", shared, nil))
		orchestrator := search.New(registry)

		Convey("When searching twice", func() {
			first, err := orchestrator.Search(context.Background(), "dune")
			So(err, ShouldBeNil)
			second, err := orchestrator.Search(context.Background(), "dune")
			So(err, ShouldBeNil)

			Convey("Then the provider's slice is never written to", func() {
				So(shared[0].ExternalID, ShouldEqual, "reuse-1")
				So(shared[1].Title, ShouldEqual, "Dune")
				So(shared[2].Title, ShouldEqual, "Dune Messiah")
			})

			Convey("Then both searches see the same filtered records", func() {
				So(first, ShouldHaveLength, 2)
				So(second, ShouldResemble, first)
			})
		})
	})

	Convey("Given an empty registry", t, func() {
		orchestrator := search.New(search.NewRegistry())
		rec := &eventRecorder{}

		Convey("When searching", func() {
			results, err := orchestrator.Search(context.Background(), "dune", search.WithSink(rec.sink()))

			Convey("Then the search completes immediately with no results", func() {
				So(err, ShouldBeNil)
				So(results, ShouldNotBeNil)
				So(results, ShouldHaveLength, 0)

				completed := rec.byKind(model.KindSearchCompleted)
				So(completed, ShouldHaveLength, 1)
				ev := completed[0].(model.SearchCompleted)
				So(ev.TotalProviders, ShouldEqual, 0)
				So(ev.TotalResults, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a misbehaving event sink", t, func() {
		registry := search.NewRegistry(
			newFakeProvider("alpha", []model.MetadataRecord{record("alpha", "Dune")}, nil),
		)
		orchestrator := search.New(registry)

		Convey("When the sink returns errors", func() {
			results, err := orchestrator.Search(context.Background(), "dune",
				search.WithSink(func(model.SearchEvent) error { return errors.New("consumer broke") }),
			)

			Convey("Then the search is unaffected", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 1)
			})
		})

		Convey("When the sink panics", func() {
			results, err := orchestrator.Search(context.Background(), "dune",
				search.WithSink(func(model.SearchEvent) error { panic("consumer exploded") }),
			)

			Convey("Then the search is unaffected", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 1)
			})
		})
	})
}

func TestOrchestrator_Cancellation(t *testing.T) {
	Convey("Given five slow providers and two worker slots", t, func() {
		slow := make([]*fakeProvider, 5)
		providers := make([]provider.Provider, 5)
		for i := range slow {
			p := newFakeProvider(fmt.Sprintf("slow-%d", i), []model.MetadataRecord{record("slow", "Dune")}, nil)
			p.delay = 10 * time.Second
			slow[i] = p
			providers[i] = p
		}
		registry := search.NewRegistry(providers...)
		orchestrator := search.New(registry, search.WithMaxWorkers(2))

		Convey("When cancelling after the first two calls start", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			rec := &eventRecorder{}
			twoStarted := make(chan struct{})
			var once sync.Once
			sink := func(ev model.SearchEvent) error {
				rec.sink()(ev)
				if len(rec.byKind(model.KindProviderStarted)) >= 2 {
					once.Do(func() { close(twoStarted) })
				}
				return nil
			}
			go func() {
				<-twoStarted
				cancel()
			}()

			begun := time.Now()
			results, err := orchestrator.Search(ctx, "dune", search.WithSink(sink))

			Convey("Then the search returns promptly with partial state", func() {
				So(err, ShouldBeNil)
				So(time.Since(begun), ShouldBeLessThan, 5*time.Second)
				So(results, ShouldHaveLength, 0)
			})

			Convey("Then providers that never started emit no started events", func() {
				So(rec.byKind(model.KindProviderStarted), ShouldHaveLength, 2)

				var called int
				for _, p := range slow {
					if p.calls.Load() > 0 {
						called++
					}
				}
				So(called, ShouldEqual, 2)
			})

			Convey("Then the stream still closes with search.completed", func() {
				completed := rec.byKind(model.KindSearchCompleted)
				So(completed, ShouldHaveLength, 1)
				So(completed[0].(model.SearchCompleted).TotalProviders, ShouldEqual, 5)
			})

			Convey("Then the active call gauge drains back to zero", func() {
				deadline := time.Now().Add(2 * time.Second)
				for activeProviderCalls() != 0 && time.Now().Before(deadline) {
					time.Sleep(10 * time.Millisecond)
				}
				So(activeProviderCalls(), ShouldEqual, 0)
			})
		})
	})
}
