// Package metrics exposes Prometheus instrumentation for the refresh service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datacore"

// Metrics holds every collector of the service, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	IndicatorDurationSec *prometheus.HistogramVec // labels: indicator
	IndicatorFailures    *prometheus.CounterVec   // labels: indicator
	SymbolDurationSec    prometheus.Histogram
	DroppedSymbols       *prometheus.CounterVec // labels: reason
	Refreshes            *prometheus.CounterVec // labels: timeframe, result
	CacheLookups         *prometheus.CounterVec // labels: timeframe, result
	LastRefresh          *prometheus.GaugeVec   // labels: timeframe
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		IndicatorDurationSec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "indicator_duration_seconds",
			Help:      "Time spent computing one catalogue entry for one symbol",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}, []string{"indicator"}),
		IndicatorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indicator_failures_total",
			Help:      "Catalogue entries that failed and were left out of the result",
		}, []string{"indicator"}),
		SymbolDurationSec: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "symbol_pipeline_duration_seconds",
			Help:      "Time to enrich the candles of one symbol",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		DroppedSymbols: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_symbols_total",
			Help:      "Symbols excluded from a snapshot",
		}, []string{"reason"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Snapshot refresh attempts",
		}, []string{"timeframe", "result"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Snapshot cache lookups by outcome (hit, miss, stale, error)",
		}, []string{"timeframe", "result"}),
		LastRefresh: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh",
		}, []string{"timeframe"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.IndicatorDurationSec,
		m.IndicatorFailures,
		m.SymbolDurationSec,
		m.DroppedSymbols,
		m.Refreshes,
		m.CacheLookups,
		m.LastRefresh,
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IndicatorFailed implements pipeline.Observer.
func (m *Metrics) IndicatorFailed(name string) {
	m.IndicatorFailures.WithLabelValues(name).Inc()
}

// IndicatorDuration implements pipeline.Observer.
func (m *Metrics) IndicatorDuration(name string, d time.Duration) {
	m.IndicatorDurationSec.WithLabelValues(name).Observe(d.Seconds())
}

// SymbolProcessed records the enrichment time of one symbol.
func (m *Metrics) SymbolProcessed(d time.Duration) {
	m.SymbolDurationSec.Observe(d.Seconds())
}

// SymbolDropped counts a symbol left out of a snapshot.
func (m *Metrics) SymbolDropped(reason string) {
	m.DroppedSymbols.WithLabelValues(reason).Inc()
}

// RefreshFinished counts a refresh attempt; result is "ok" or "error".
func (m *Metrics) RefreshFinished(timeframe, result string) {
	m.Refreshes.WithLabelValues(timeframe, result).Inc()
	if result == "ok" {
		m.LastRefresh.WithLabelValues(timeframe).SetToCurrentTime()
	}
}

// CacheLookup counts a snapshot cache lookup.
func (m *Metrics) CacheLookup(timeframe, result string) {
	m.CacheLookups.WithLabelValues(timeframe, result).Inc()
}
