package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "transaction_service"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Account metrics
	AccountsCreated         prometheus.Counter
	AccountStatusChanges    *prometheus.CounterVec
	AccountNumberCollisions prometheus.Counter

	// Movement metrics
	MovementsRegistered *prometheus.CounterVec
	MovementErrors      *prometheus.CounterVec
	MovementDuration    prometheus.Histogram
	MovementAmount      *prometheus.HistogramVec

	// Report metrics
	StatementsGenerated prometheus.Counter

	// User service metrics
	UserServiceRequests *prometheus.CounterVec
	ClientCacheLookups  *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	PublishErrors   prometheus.Counter

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec
}

// New creates and registers all metrics on the default registerer
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all metrics on reg
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accounts_created_total",
			Help:      "Total number of accounts created",
		}),
		AccountStatusChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "account_status_changes_total",
				Help:      "Total number of account status changes",
			},
			[]string{"status"},
		),
		AccountNumberCollisions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_number_collisions_total",
			Help:      "Generated account numbers rejected by the unique constraint",
		}),

		MovementsRegistered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "movements_registered_total",
				Help:      "Total number of movements registered",
			},
			[]string{"type"},
		),
		MovementErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "movement_errors_total",
				Help:      "Total number of rejected movements",
			},
			[]string{"reason"},
		),
		MovementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "movement_duration_seconds",
			Help:      "Duration of movement registration",
			Buckets:   prometheus.DefBuckets,
		}),
		MovementAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "movement_amount",
				Help:      "Movement amounts",
				Buckets:   []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"type"},
		),

		StatementsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statements_generated_total",
			Help:      "Total number of account statements generated",
		}),

		UserServiceRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "user_service_requests_total",
				Help:      "Requests to the user service by outcome",
			},
			[]string{"outcome"},
		),
		ClientCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_cache_lookups_total",
				Help:      "Client cache lookups by result",
			},
			[]string{"result"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Outbox events published by type",
			},
			[]string{"event_type"},
		),
		PublishErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_errors_total",
			Help:      "Outbox events that failed to publish",
		}),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Total number of rate limit hits",
			},
			[]string{"endpoint"},
		),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Total number of authentication failures",
			},
			[]string{"reason"},
		),
	}
}
