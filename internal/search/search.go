// Package search queries an external web search API for property listings.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/cache"
	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
)

// ErrNotConfigured is returned by backends that have no credentials.
var ErrNotConfigured = errors.New("web search not configured")

// Result is one web hit.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Backend runs a web search.
type Backend interface {
	Search(ctx context.Context, query string, count int) ([]Result, error)
	// Name labels results produced by this backend.
	Name() string
}

// Cached wraps a backend with a TTL cache. Cache failures degrade to a
// direct search.
type Cached struct {
	next    Backend
	cache   cache.Cache
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewCached wraps next.
func NewCached(next Backend, c cache.Cache, ttl time.Duration, logger *slog.Logger, mc *metrics.Collector) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{next: next, cache: c, ttl: ttl, logger: logger, metrics: mc}
}

func (c *Cached) Name() string { return c.next.Name() }

func (c *Cached) Search(ctx context.Context, query string, count int) ([]Result, error) {
	key := cache.Key("search", query, count)

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("search cache read failed", "error", err)
	} else if ok {
		var results []Result
		if err := json.Unmarshal(raw, &results); err == nil {
			c.metrics.Increment(metrics.CounterSearchCacheHits)
			return results, nil
		}
	}

	start := time.Now()
	results, err := c.next.Search(ctx, query, count)
	c.metrics.RecordTiming(metrics.OpWebSearch, time.Since(start))
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(results); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn("search cache write failed", "error", err)
		}
	}
	return results, nil
}
