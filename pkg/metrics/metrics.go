package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccessDecisions counts permission resolutions and their outcome (granted|denied|error).
	AccessDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framework_access_decisions_total",
			Help: "Total number of permission resolutions",
		},
		[]string{"resource_type", "result"},
	)

	// GrantMutations counts grant lifecycle events (create|update|delete).
	GrantMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framework_grant_mutations_total",
			Help: "Total number of permission grant mutations",
		},
		[]string{"action"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "framework_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
