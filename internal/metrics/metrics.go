package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AuthFailures counts requests rejected by the auth gate, by reason.
	AuthFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codeshell",
		Name:      "auth_failures_total",
		Help:      "Requests rejected by the auth gate.",
	}, []string{"reason"})

	// Deploys counts deploy attempts by outcome.
	Deploys = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codeshell",
		Name:      "deploys_total",
		Help:      "Deploy attempts forwarded to the deployment provider.",
	}, []string{"result"})

	// PreviewCache counts preview cache lookups by result.
	PreviewCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codeshell",
		Name:      "preview_cache_total",
		Help:      "Preview cache lookups.",
	}, []string{"result"})

	// EventsConsumed counts preview events handled by the worker.
	EventsConsumed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codeshell",
		Name:      "preview_events_consumed_total",
		Help:      "Preview events handled by the worker.",
	}, []string{"action", "result"})
)

func init() {
	prometheus.MustRegister(AuthFailures, Deploys, PreviewCache, EventsConsumed)
}
