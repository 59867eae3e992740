// Package metrics holds the Prometheus collectors of the ingestion pipeline.
// Collectors are created per instance and registered on the Registerer passed to New.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ingestion"

// Outcome label values
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomePublished = "published"
	OutcomeRejected  = "rejected"
)

// Metrics groups the collectors used across the pipeline
type Metrics struct {
	// EventsIngested counts ingested events by outcome (success, failure)
	EventsIngested *prometheus.CounterVec
	// ProcessingRetries counts failed processing attempts that were retried
	ProcessingRetries prometheus.Counter
	// DeadLetters counts dead-letter publishes by outcome (published, failure)
	DeadLetters *prometheus.CounterVec
	// TimeoutWarnings counts events that exceeded the timeout warning threshold
	TimeoutWarnings prometheus.Counter
	// IngestionDuration observes end to end ingestion time per event
	IngestionDuration prometheus.Histogram

	// GroupUpsertRaces counts group upserts that lost the first-insert race
	GroupUpsertRaces prometheus.Counter

	// WebhookDeliveries counts hook deliveries by outcome (success, failure, rejected)
	WebhookDeliveries *prometheus.CounterVec
	// CircuitBreakerState reports breaker state per hook or team Slack webhook (0 closed, 1 half-open, 2 open)
	CircuitBreakerState *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EventsIngested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total number of ingested events by outcome",
			},
			[]string{"outcome"},
		),
		ProcessingRetries: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "processing_retries_total",
				Help:      "Total number of retried event processing attempts",
			},
		),
		DeadLetters: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dead_letter_total",
				Help:      "Total number of events sent to the dead letter subject by outcome",
			},
			[]string{"outcome"},
		),
		TimeoutWarnings: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "timeout_warnings_total",
				Help:      "Total number of events still ingesting after the warning threshold",
			},
		),
		IngestionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "duration_seconds",
				Help:      "Duration of event ingestion in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		GroupUpsertRaces: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "group_upsert_races_total",
				Help:      "Total number of group upserts retried after a concurrent insert",
			},
		),
		WebhookDeliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_deliveries_total",
				Help:      "Total number of webhook deliveries by outcome",
			},
			[]string{"outcome"},
		),
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state per hook or team Slack webhook (0=closed, 1=half-open, 2=open)",
			},
			[]string{"breaker"},
		),
	}
}

// NewNop creates collectors that are not registered anywhere
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
