// Package cache provides the TTL key-value cache in front of web search.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rahul2317-NRK/chatbot9/internal/config"
)

// Cache stores opaque values for a bounded time.
type Cache interface {
	// Get returns ok=false on a miss or an expired entry.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// New returns a Redis cache when cfg.RedisURL is set, otherwise an in-process
// one. A Redis server that cannot be reached falls back to memory.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) Cache {
	if cfg.RedisURL == "" {
		return NewMemory(cfg.SearchCacheTTL)
	}
	rc, err := NewRedis(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		if logger != nil {
			logger.Warn("redis unavailable, using in-process search cache", "addr", cfg.RedisURL, "error", err)
		}
		return NewMemory(cfg.SearchCacheTTL)
	}
	return rc
}

// Key normalizes a lookup into a cache key under namespace.
func Key(namespace, query string, count int) string {
	return fmt.Sprintf("%s:%d:%s", namespace, count, strings.ToLower(strings.TrimSpace(query)))
}
