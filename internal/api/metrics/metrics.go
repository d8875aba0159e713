// Package metrics defines and registers all custom Prometheus metrics for the
// tours API. It is the single source of truth for metric names, labels, and
// help strings. Metrics register with the default registry at import time via
// promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tours"

// SignupsTotal counts successfully created accounts.
var SignupsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of accounts created via signup.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// AuthRejectionsTotal counts requests rejected by the auth guard.
// Label:
//   - reason: "missing_token", "invalid_token", "user_not_found",
//     "password_changed" or "forbidden"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by authentication or role checks.",
	},
	[]string{"reason"},
)

// ReviewsWrittenTotal counts review mutations. Each one triggers a
// synchronous rating-summary recomputation.
// Label:
//   - action: "create", "update" or "delete"
var ReviewsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_written_total",
		Help:      "Total number of review mutations, labelled by action.",
	},
	[]string{"action"},
)

// PasswordResetsTotal counts reset-token flow events.
// Label:
//   - stage: "requested" or "completed"
var PasswordResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of password reset requests and completions.",
	},
	[]string{"stage"},
)

// RateLimitRejectionsTotal counts requests dropped by the rate limiter.
var RateLimitRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Total number of requests rejected by the per-IP rate limiter.",
	},
)
