package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/lexicon"
	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/rahul2317-NRK/chatbot9/internal/policy"
	"github.com/rahul2317-NRK/chatbot9/internal/search"
	"github.com/rahul2317-NRK/chatbot9/internal/store"
)

// Policy authorizes a call before it runs.
type Policy interface {
	Evaluate(ctx context.Context, in policy.Input) (policy.Decision, error)
}

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Store   store.Store
	Search  search.Backend // nil serves placeholder search results
	Gate    *lexicon.Gate
	Policy  Policy // nil allows every call
	Logger  *slog.Logger
	Metrics *metrics.Collector
	Now     func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Options tune the executor.
type Options struct {
	// Timeout bounds each call. Zero disables it.
	Timeout time.Duration
	// Parallel lets ExecuteAll run calls concurrently.
	Parallel bool
	// FabricateDetails synthesizes a placeholder record when a property
	// lookup misses. When false a miss is an error result.
	FabricateDetails bool
}
