package tools

import (
	"context"
	"errors"

	"github.com/rahul2317-NRK/chatbot9/internal/metrics"
	"github.com/rahul2317-NRK/chatbot9/internal/search"
)

const (
	searchResultCount = 10

	// FallbackSource labels the placeholder hit served without a backend.
	FallbackSource = "Mock Data"
)

func searchQuery(query, location string) string {
	q := query + " real estate property"
	if location != "" {
		q += " " + location
	}
	return q
}

func fallbackSearch(q string) SearchResult {
	return SearchResult{
		Results: []SearchHit{{
			Title:   "Sample Property Listing",
			Snippet: "3BR/2BA house in downtown area, $450,000",
			Link:    "https://example.com/property/123",
			Source:  FallbackSource,
		}},
		Query:        q,
		TotalResults: 1,
		Degraded:     true,
	}
}

func newSearchHandler(deps *Dependencies) func(context.Context, SearchArgs) (any, error) {
	return func(ctx context.Context, args SearchArgs) (any, error) {
		q := searchQuery(args.Query, args.Location)

		if deps.Search == nil {
			deps.Metrics.Increment(metrics.CounterSearchFallbacks)
			return fallbackSearch(q), nil
		}

		results, err := deps.Search.Search(ctx, q, searchResultCount)
		if err != nil {
			if !errors.Is(err, search.ErrNotConfigured) {
				deps.Logger.Warn("web search failed, serving placeholder", "error", err)
			}
			deps.Metrics.Increment(metrics.CounterSearchFallbacks)
			return fallbackSearch(q), nil
		}

		hits := make([]SearchHit, 0, len(results))
		for _, r := range results {
			hits = append(hits, SearchHit{
				Title:   r.Title,
				Snippet: r.Snippet,
				Link:    r.Link,
				Source:  deps.Search.Name(),
			})
		}
		return SearchResult{Results: hits, Query: q, TotalResults: len(hits)}, nil
	}
}
