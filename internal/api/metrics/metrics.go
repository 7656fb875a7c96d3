// Package metrics defines and registers all custom Prometheus metrics for
// the clinic workflow API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init via promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clinic"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "throttled", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// GatewayDecisionsTotal counts access gateway outcomes.
// Label:
//   - decision: "allow", "login_redirect", or "denied_redirect"
var GatewayDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_decisions_total",
		Help:      "Total number of access gateway decisions, by outcome.",
	},
	[]string{"decision"},
)

// SecurityEventsTotal counts recorded security events.
// Label:
//   - kind: "login_failed", "login_throttled", or "gateway_denied"
var SecurityEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "security_events_total",
		Help:      "Total number of security events recorded, by kind.",
	},
	[]string{"kind"},
)

// ── Encounter metrics ─────────────────────────────────────────────────────────

// EncountersCreatedTotal counts newly registered encounters.
var EncountersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "encounters_created_total",
		Help:      "Total number of encounters registered.",
	},
)

// ConsultClaimsTotal counts start-consultation attempts.
// Label:
//   - result: "claimed" (doctor took ownership) or "rejected" (guard failed)
var ConsultClaimsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "consult_claims_total",
		Help:      "Total number of consultation claim attempts, by result.",
	},
	[]string{"result"},
)

// TransitionDuration measures how long an encounter state transition takes,
// including the store transaction and the paired audit write.
// Label:
//   - operation: "start_consultation", etc.
var TransitionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "transition_duration_seconds",
		Help:      "Duration of encounter state transitions, by operation.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"operation"},
)
