package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search cascade and analytics Prometheus metrics.
var (
	SearchLayerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobsearch",
			Name:      "search_layer_duration_seconds",
			Help:      "Retrieval layer duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"layer"},
	)

	SearchLayerCandidates = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jobsearch",
			Name:      "search_layer_candidates",
			Help:      "Admissible candidates returned per layer call",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"layer"},
	)

	SearchLayerFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobsearch",
			Name:      "search_layer_failures_total",
			Help:      "Retrieval layer calls that failed and contributed zero candidates",
		},
		[]string{"layer"},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobsearch",
			Name:      "search_requests_total",
			Help:      "Completed searches by mode and terminal cascade state",
		},
		[]string{"mode", "state", "fallback"},
	)

	SuggestRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobsearch",
			Name:      "suggest_requests_total",
			Help:      "Suggestion requests by cache result",
		},
		[]string{"cache"}, // "hit" / "miss" / "skip"
	)

	AnalyticsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobsearch",
			Name:      "analytics_events_total",
			Help:      "Search analytics writes by kind and result",
		},
		[]string{"kind", "result"}, // kind: "search"/"click"; result: "ok"/"dropped"/"failed"/"unmatched"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchLayerDuration)
	prometheus.MustRegister(SearchLayerCandidates)
	prometheus.MustRegister(SearchLayerFailuresTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SuggestRequestsTotal)
	prometheus.MustRegister(AnalyticsEventsTotal)
	searchMetricsRegistered = true
}
