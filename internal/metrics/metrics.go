package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	SourcesQueried     int64
	SourceFailures     int64
	ItemsFetched       int64
	DuplicatesFiltered int64
	FallbacksServed    int64
	TwitterCallsSpent  int64
	AlertsTriggered    int64

	// Timings
	LastAggregationTime    time.Duration
	AverageAggregationTime time.Duration
	TotalAggregationTime   time.Duration
	AggregationCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddSourcesQueried(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SourcesQueried += int64(n)
}

func (m *Metrics) IncrementSourceFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SourceFailures++
}

func (m *Metrics) AddItemsFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsFetched += int64(n)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) IncrementFallbacksServed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FallbacksServed++
}

func (m *Metrics) IncrementTwitterCallsSpent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TwitterCallsSpent++
}

func (m *Metrics) IncrementAlertsTriggered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AlertsTriggered++
}

func (m *Metrics) RecordAggregationTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastAggregationTime = duration
	m.TotalAggregationTime += duration
	m.AggregationCount++

	if m.AggregationCount > 0 {
		m.AverageAggregationTime = m.TotalAggregationTime / time.Duration(m.AggregationCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"sources_queried":             m.SourcesQueried,
		"source_failures":             m.SourceFailures,
		"items_fetched":               m.ItemsFetched,
		"duplicates_filtered":         m.DuplicatesFiltered,
		"fallbacks_served":            m.FallbacksServed,
		"twitter_calls_spent":         m.TwitterCallsSpent,
		"alerts_triggered":            m.AlertsTriggered,
		"last_aggregation_time_ms":    m.LastAggregationTime.Milliseconds(),
		"average_aggregation_time_ms": m.AverageAggregationTime.Milliseconds(),
		"last_run_time":               m.LastRunTime.Format(time.RFC3339),
		"last_error_time":             m.LastErrorTime.Format(time.RFC3339),
		"last_error":                  m.LastError,
		"is_healthy":                  m.IsHealthy,
	}
}
