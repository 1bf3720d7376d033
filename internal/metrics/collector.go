// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

// Operation names for the collector.
const (
	OpLLMGenerate = "llm_generate"
	OpStoreQuery  = "store_query"
	OpWebSearch   = "web_search"
	OpPipeline    = "pipeline"

	toolPrefix = "tool:"
)

// Counter names.
const (
	CounterOffTopic        = "off_topic_rejected"
	CounterToolErrors      = "tool_errors"
	CounterGenerationFails = "generation_failures"
	CounterPipelineFails   = "pipeline_failures"
	CounterPersistFails    = "persistence_failures"
	CounterSearchFallbacks = "search_fallbacks"
	CounterSearchCacheHits = "search_cache_hits"
	CounterPolicyBlocks    = "policy_blocks"
)

// ToolOp is the operation name under which a tool's executions are recorded.
func ToolOp(tool string) string {
	return toolPrefix + tool
}

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Token metrics (only for generation)
	TotalInputTokens  int64
	TotalOutputTokens int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`

	TotalInputTokens  *int64 `json:"total_input_tokens,omitempty"`
	TotalOutputTokens *int64 `json:"total_output_tokens,omitempty"`
}

// Snapshot represents the full service statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64                       `json:"uptime_seconds"`
	Generation    *OperationSnapshot            `json:"generation,omitempty"`
	StoreQuery    *OperationSnapshot            `json:"store_query,omitempty"`
	WebSearch     *OperationSnapshot            `json:"web_search,omitempty"`
	Pipeline      *OperationSnapshot            `json:"pipeline,omitempty"`
	Tools         map[string]*OperationSnapshot `json:"tools"`
	Counters      map[string]int64              `json:"counters"`
}

// ToolNames returns the tools present in the snapshot, sorted.
func (s Snapshot) ToolNames() []string {
	names := make([]string, 0, len(s.Tools))
	for name := range s.Tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe and a nil *Collector discards everything.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
	counters  map[string]int64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
		counters:  make(map[string]int64),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

func (m *OperationMetrics) observe(d time.Duration) {
	m.Count++
	m.TotalTime += d
	if d < m.MinTime {
		m.MinTime = d
	}
	if d > m.MaxTime {
		m.MaxTime = d
	}
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.getOrCreate(op).observe(duration)
}

// RecordLLMUsage records timing and token usage for a generation call.
func (c *Collector) RecordLLMUsage(duration time.Duration, inputTokens, outputTokens int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(OpLLMGenerate)
	m.observe(duration)
	m.TotalInputTokens += inputTokens
	m.TotalOutputTokens += outputTokens
}

// Increment bumps a named counter by one.
func (c *Collector) Increment(counter string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.counters[counter]++
	c.mu.Unlock()
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics, includeTokens bool) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	snap := &OperationSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}

	if includeTokens && (m.TotalInputTokens > 0 || m.TotalOutputTokens > 0) {
		in, out := m.TotalInputTokens, m.TotalOutputTokens
		snap.TotalInputTokens = &in
		snap.TotalOutputTokens = &out
	}

	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{Tools: map[string]*OperationSnapshot{}, Counters: map[string]int64{}}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Generation:    snapshotOp(c.ops[OpLLMGenerate], true),
		StoreQuery:    snapshotOp(c.ops[OpStoreQuery], false),
		WebSearch:     snapshotOp(c.ops[OpWebSearch], false),
		Pipeline:      snapshotOp(c.ops[OpPipeline], false),
		Tools:         make(map[string]*OperationSnapshot),
		Counters:      make(map[string]int64, len(c.counters)),
	}
	for op, m := range c.ops {
		if name, ok := strings.CutPrefix(op, toolPrefix); ok {
			snap.Tools[name] = snapshotOp(m, false)
		}
	}
	for k, v := range c.counters {
		snap.Counters[k] = v
	}
	return snap
}
