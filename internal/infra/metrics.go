package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight simulation counters.
// Uses atomic operations so the report server can read while runs progress.
type Metrics struct {
	// Counters
	daysSimulated  atomic.Uint64
	buyFills       atomic.Uint64
	sellFills      atomic.Uint64
	strategyFaults atomic.Uint64
	marketFaults   atomic.Uint64
	runsCompleted  atomic.Uint64
	runsFailed     atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	activeRuns atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordDay records one simulated day with its step latency.
func (m *Metrics) RecordDay(latencyNs int64) {
	m.daysSimulated.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordFill records a fill on the given side ("BUY" or "SELL").
func (m *Metrics) RecordFill(side string) {
	if side == "BUY" {
		m.buyFills.Add(1)
		return
	}
	m.sellFills.Add(1)
}

// RecordStrategyFault records a recovered strategy fault.
func (m *Metrics) RecordStrategyFault() {
	m.strategyFaults.Add(1)
}

// RecordMarketFault records a fatal market data fault.
func (m *Metrics) RecordMarketFault() {
	m.marketFaults.Add(1)
}

// RunStarted increments active runs by 1.
func (m *Metrics) RunStarted() {
	m.activeRuns.Add(1)
}

// RunFinished decrements active runs and counts the outcome.
func (m *Metrics) RunFinished(failed bool) {
	m.activeRuns.Add(-1)
	if failed {
		m.runsFailed.Add(1)
		return
	}
	m.runsCompleted.Add(1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	DaysSimulated  uint64
	BuyFills       uint64
	SellFills      uint64
	StrategyFaults uint64
	MarketFaults   uint64
	RunsCompleted  uint64
	RunsFailed     uint64
	AvgLatencyNs   int64
	ActiveRuns     int32
	Timestamp      time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		DaysSimulated:  m.daysSimulated.Load(),
		BuyFills:       m.buyFills.Load(),
		SellFills:      m.sellFills.Load(),
		StrategyFaults: m.strategyFaults.Load(),
		MarketFaults:   m.marketFaults.Load(),
		RunsCompleted:  m.runsCompleted.Load(),
		RunsFailed:     m.runsFailed.Load(),
		AvgLatencyNs:   avgLatency,
		ActiveRuns:     m.activeRuns.Load(),
		Timestamp:      time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.daysSimulated.Store(0)
	m.buyFills.Store(0)
	m.sellFills.Store(0)
	m.strategyFaults.Store(0)
	m.marketFaults.Store(0)
	m.runsCompleted.Store(0)
	m.runsFailed.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.activeRuns.Store(0)
}
