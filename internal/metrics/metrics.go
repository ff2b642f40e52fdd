// Package metrics defines the Prometheus collectors shared by the relay and the engine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "livescore"

// Intent outcomes
const (
	OutcomeApplied   = "applied"
	OutcomeRejected  = "rejected"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// Metrics groups every collector. Collectors are usable even when not registered.
type Metrics struct {
	IntentsProcessed  *prometheus.CounterVec
	IntentDuration    *prometheus.HistogramVec
	DeltasPublished   prometheus.Counter
	Connections       prometheus.Gauge
	WatchedMatches    prometheus.Gauge
	MessagesBroadcast prometheus.Counter
	MessagesDropped   prometheus.Counter
	IntentsForwarded  prometheus.Counter
	IntentsThrottled  prometheus.Counter
}

// New creates the collectors and registers them on reg when reg is non-nil
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IntentsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "intents_processed_total",
			Help:      "Scorer intents processed by route and outcome.",
		}, []string{"route", "outcome"}),
		IntentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "intent_duration_seconds",
			Help:      "Time to apply a scorer intent.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"route"}),
		DeltasPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "deltas_published_total",
			Help:      "Scorecard deltas published.",
		}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "connections",
			Help:      "Open viewer connections.",
		}),
		WatchedMatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "watched_matches",
			Help:      "Matches with at least one viewer.",
		}),
		MessagesBroadcast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "messages_broadcast_total",
			Help:      "Frames queued to viewers.",
		}),
		MessagesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "messages_dropped_total",
			Help:      "Frames dropped because a viewer's buffer was full.",
		}),
		IntentsForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "intents_forwarded_total",
			Help:      "Scorer intents published to the engine.",
		}),
		IntentsThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "intents_throttled_total",
			Help:      "Scorer intents refused by the per-connection rate limit.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.IntentsProcessed,
			m.IntentDuration,
			m.DeltasPublished,
			m.Connections,
			m.WatchedMatches,
			m.MessagesBroadcast,
			m.MessagesDropped,
			m.IntentsForwarded,
			m.IntentsThrottled,
		)
	}
	return m
}
