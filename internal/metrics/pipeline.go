package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haven",
			Name:      "queries_total",
			Help:      "Resolved queries by pipeline, response source and decision path",
		},
		[]string{"pipeline", "source", "path"},
	)

	QueryTopScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "haven",
			Name:      "query_top_score",
			Help:      "Top relevance score seen by the confidence gate",
			Buckets:   []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
		[]string{"pipeline"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "haven",
			Name:      "query_duration_seconds",
			Help:      "End-to-end query resolution duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"pipeline", "source"},
	)

	RerankTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haven",
			Name:      "rerank_total",
			Help:      "Rerank calls by result (scored / fail_open / error)",
		},
		[]string{"result"},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haven",
			Name:      "search_requests_total",
			Help:      "Search provider requests by provider and status",
		},
		[]string{"provider", "status"},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haven",
			Name:      "generation_requests_total",
			Help:      "Text generation requests by provider, model and status",
		},
		[]string{"provider", "model", "status"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers query pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(QueryTopScore)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(RerankTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(GenerationRequestsTotal)
	pipelineMetricsRegistered = true
}
