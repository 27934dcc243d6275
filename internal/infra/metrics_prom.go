package infra

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	descDays = prometheus.NewDesc("mmgame_days_simulated_total",
		"Total number of simulated days", nil, nil)
	descFills = prometheus.NewDesc("mmgame_fills_total",
		"Total number of fills, partitioned by side", []string{"side"}, nil)
	descStrategyFaults = prometheus.NewDesc("mmgame_strategy_faults_total",
		"Quotes rejected and replaced by a no-trade quote", nil, nil)
	descMarketFaults = prometheus.NewDesc("mmgame_market_faults_total",
		"Fatal market data faults", nil, nil)
	descRuns = prometheus.NewDesc("mmgame_runs_total",
		"Finished runs, partitioned by outcome", []string{"outcome"}, nil)
	descLatency = prometheus.NewDesc("mmgame_day_latency_avg_seconds",
		"Average wall time of one simulated day", nil, nil)
	descActive = prometheus.NewDesc("mmgame_active_runs",
		"Number of runs in progress", nil, nil)
)

// metricsCollector exports a Metrics snapshot on every scrape.
type metricsCollector struct {
	m *Metrics
}

// NewCollector wraps m as a prometheus.Collector.
func NewCollector(m *Metrics) prometheus.Collector {
	return &metricsCollector{m: m}
}

func (c *metricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descDays
	ch <- descFills
	ch <- descStrategyFaults
	ch <- descMarketFaults
	ch <- descRuns
	ch <- descLatency
	ch <- descActive
}

func (c *metricsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.m.Snapshot()
	ch <- prometheus.MustNewConstMetric(descDays, prometheus.CounterValue, float64(s.DaysSimulated))
	ch <- prometheus.MustNewConstMetric(descFills, prometheus.CounterValue, float64(s.BuyFills), "buy")
	ch <- prometheus.MustNewConstMetric(descFills, prometheus.CounterValue, float64(s.SellFills), "sell")
	ch <- prometheus.MustNewConstMetric(descStrategyFaults, prometheus.CounterValue, float64(s.StrategyFaults))
	ch <- prometheus.MustNewConstMetric(descMarketFaults, prometheus.CounterValue, float64(s.MarketFaults))
	ch <- prometheus.MustNewConstMetric(descRuns, prometheus.CounterValue, float64(s.RunsCompleted), "completed")
	ch <- prometheus.MustNewConstMetric(descRuns, prometheus.CounterValue, float64(s.RunsFailed), "failed")
	ch <- prometheus.MustNewConstMetric(descLatency, prometheus.GaugeValue, float64(s.AvgLatencyNs)/1e9)
	ch <- prometheus.MustNewConstMetric(descActive, prometheus.GaugeValue, float64(s.ActiveRuns))
}

// NewRegistry returns a registry with m and the Go runtime collectors.
func NewRegistry(m *Metrics) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(m), collectors.NewGoCollector())
	return reg
}

// MetricsHandler returns the Prometheus HTTP handler for reg.
func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
