package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the counters the recording console exports on /metrics.
type Metrics struct {
	RecordAttempts   *prometheus.CounterVec
	ServerRejections *prometheus.CounterVec
	DegradedFetches  *prometheus.CounterVec
	UpstreamRequests *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecordAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leagueos",
			Name:      "record_attempts_total",
			Help:      "Game recording attempts by outcome.",
		}, []string{"outcome"}),
		ServerRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leagueos",
			Name:      "server_rejections_total",
			Help:      "Games rejected by the league API, by error kind.",
		}, []string{"kind"}),
		DegradedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leagueos",
			Name:      "dashboard_degraded_fetches_total",
			Help:      "Dashboard sub-fetches that failed and were replaced by empty data.",
		}, []string{"resource"}),
		UpstreamRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leagueos",
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of league API calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	reg.MustRegister(m.RecordAttempts, m.ServerRejections, m.DegradedFetches, m.UpstreamRequests)
	return m
}

// NewRegistry returns a registry with the Go and process collectors attached.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
