package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values shared by the domain counters.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

var (
	// StoreOps counts cellar store calls by operation (create, update,
	// delete, get, list, subscribe) and outcome.
	StoreOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cellar_store_ops_total",
			Help: "Total number of cellar store operations.",
		},
		[]string{"op", "outcome"},
	)

	// AssistantRequests counts generative model calls by operation
	// (chat, label) and outcome.
	AssistantRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_requests_total",
			Help: "Total number of assistant model requests.",
		},
		[]string{"op", "outcome"},
	)

	// ActiveSubscriptions gauges live cellar subscriptions across all users.
	ActiveSubscriptions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cellar_active_subscriptions",
			Help: "Current number of open cellar subscriptions.",
		},
	)
)

func init() {
	prometheus.MustRegister(StoreOps, AssistantRequests, ActiveSubscriptions)
}
