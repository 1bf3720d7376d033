package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpStoreQuery, 10*time.Millisecond)
	c.RecordTiming(OpStoreQuery, 30*time.Millisecond)

	snap := c.Snapshot()

	require.NotNil(t, snap.StoreQuery)
	assert.Equal(t, int64(2), snap.StoreQuery.Count)
	assert.Equal(t, int64(40), snap.StoreQuery.TotalTimeMs)
	assert.InDelta(t, 20.0, snap.StoreQuery.AvgTimeMs, 0.001)
	assert.Equal(t, int64(10), snap.StoreQuery.MinTimeMs)
	assert.Equal(t, int64(30), snap.StoreQuery.MaxTimeMs)
	assert.Nil(t, snap.WebSearch)
}

func TestToolTimingsAreGroupedByName(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(ToolOp("getInterestRates"), time.Millisecond)
	c.RecordTiming(ToolOp("calculateMortgage"), time.Millisecond)
	c.RecordTiming(ToolOp("calculateMortgage"), time.Millisecond)

	snap := c.Snapshot()

	assert.Equal(t, []string{"calculateMortgage", "getInterestRates"}, snap.ToolNames())
	assert.Equal(t, int64(2), snap.Tools["calculateMortgage"].Count)
}

func TestRecordLLMUsage(t *testing.T) {
	c := NewCollector()
	c.RecordLLMUsage(200*time.Millisecond, 120, 40)
	c.RecordLLMUsage(100*time.Millisecond, 80, 10)

	snap := c.Snapshot()

	require.NotNil(t, snap.Generation)
	require.NotNil(t, snap.Generation.TotalInputTokens)
	assert.Equal(t, int64(200), *snap.Generation.TotalInputTokens)
	assert.Equal(t, int64(50), *snap.Generation.TotalOutputTokens)
}

func TestCounters(t *testing.T) {
	c := NewCollector()
	c.Increment(CounterOffTopic)
	c.Increment(CounterOffTopic)
	c.Increment(CounterToolErrors)

	snap := c.Snapshot()
	assert.Equal(t, int64(2), snap.Counters[CounterOffTopic])
	assert.Equal(t, int64(1), snap.Counters[CounterToolErrors])
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.RecordTiming(OpPipeline, time.Second)
	c.RecordLLMUsage(time.Second, 1, 1)
	c.Increment(CounterOffTopic)

	snap := c.Snapshot()
	assert.Empty(t, snap.Tools)
	assert.Empty(t, snap.Counters)
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordTiming(OpPipeline, time.Millisecond)
			c.Increment(CounterToolErrors)
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, int64(50), snap.Pipeline.Count)
	assert.Equal(t, int64(50), snap.Counters[CounterToolErrors])
}
