package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// DefaultEndpoint is the Custom Search JSON API.
const DefaultEndpoint = "https://www.googleapis.com/customsearch/v1"

// GoogleName is the source label for Custom Search hits.
const GoogleName = "Google Search"

// Google calls the Custom Search JSON API.
type Google struct {
	apiKey   string
	engineID string
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
}

// GoogleOption customizes a Google client.
type GoogleOption func(*Google)

// WithEndpoint points the client at another base URL.
func WithEndpoint(endpoint string) GoogleOption {
	return func(g *Google) { g.endpoint = endpoint }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(g *Google) { g.http = c }
}

// NewGoogle creates a client limited to perMinute requests. A non-positive
// perMinute disables limiting.
func NewGoogle(apiKey, engineID string, timeout time.Duration, perMinute int, opts ...GoogleOption) *Google {
	limit := rate.Inf
	burst := 1
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
		burst = max(perMinute/10, 1)
	}
	g := &Google{
		apiKey:   apiKey,
		engineID: engineID,
		endpoint: DefaultEndpoint,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, burst),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Google) Name() string { return GoogleName }

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"items"`
}

// Search returns up to count hits. Non-200 responses are errors.
func (g *Google) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if g.apiKey == "" || g.engineID == "" {
		return nil, ErrNotConfigured
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]Result, 0, len(body.Items))
	for _, item := range body.Items {
		results = append(results, Result{Title: item.Title, Snippet: item.Snippet, Link: item.Link})
	}
	return results, nil
}
