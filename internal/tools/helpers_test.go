package tools

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/lexicon"
	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/rahul2317-NRK/chatbot9/internal/search"
	"github.com/rahul2317-NRK/chatbot9/internal/store"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

// testLogger creates a logger for test visibility.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

type fixture struct {
	exec    *Executor
	store   *store.Memory
	metrics *metrics.Collector
	deps    *Dependencies
}

func newFixture(t *testing.T, opts Options, configure ...func(*Dependencies)) fixture {
	t.Helper()
	mem := store.NewMemory()
	mc := metrics.NewCollector()
	deps := &Dependencies{
		Store:   mem,
		Gate:    lexicon.NewGate(lexicon.DefaultVocabulary()),
		Logger:  testLogger(),
		Metrics: mc,
		Now:     func() time.Time { return fixedNow },
	}
	for _, fn := range configure {
		fn(deps)
	}
	return fixture{exec: NewExecutor(deps, opts), store: mem, metrics: mc, deps: deps}
}

type stubBackend struct {
	results []search.Result
	err     error
	queries []string
}

func (b *stubBackend) Name() string { return "Stub Search" }

func (b *stubBackend) Search(_ context.Context, query string, _ int) ([]search.Result, error) {
	b.queries = append(b.queries, query)
	return b.results, b.err
}
