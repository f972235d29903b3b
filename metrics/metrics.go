package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalysesTotal counts /api/analyze outcomes.
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "verdix",
		Subsystem: "analyzer",
		Name:      "analyses_total",
		Help:      "Total number of product analyses, labeled by result (ok, bad_request, llm_error, empty).",
	}, []string{"result"})

	// AlternativesStrategyTotal counts which alternatives strategy produced the entries.
	AlternativesStrategyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "verdix",
		Subsystem: "parser",
		Name:      "alternatives_strategy_total",
		Help:      "Total number of parsed reports, labeled by the alternatives strategy that matched (none when empty).",
	}, []string{"strategy"})

	// ParseDiagnosticsTotal counts non-fatal parser diagnostics.
	ParseDiagnosticsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "verdix",
		Subsystem: "parser",
		Name:      "diagnostics_total",
		Help:      "Total number of parser diagnostics, labeled by extraction stage.",
	}, []string{"stage"})

	LLMLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "verdix",
		Subsystem: "llm",
		Name:      "request_duration_seconds",
		Help:      "Time spent waiting for the vision model, labeled by provider and result.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider", "result"})

	// RecyclingLookupsTotal counts recycling center lookups by where the answer came from.
	RecyclingLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "verdix",
		Subsystem: "recycling",
		Name:      "lookups_total",
		Help:      "Total number of recycling center lookups, labeled by source (cache, overpass, error).",
	}, []string{"source"})

	EventPublishErrorTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "verdix",
		Subsystem: "events",
		Name:      "publish_error_total",
		Help:      "Total number of scan events that could not be published.",
	})
)

// Register registers verdix metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysesTotal,
			AlternativesStrategyTotal,
			ParseDiagnosticsTotal,
			LLMLatencySeconds,
			RecyclingLookupsTotal,
			EventPublishErrorTotal,
		)
	})
}
