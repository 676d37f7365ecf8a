package observability

import (
	"context"

	"github.com/aretw0/shopkeep/pkg/turn"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for shopkeep_turns_total.
const (
	OutcomeApplied   = "applied"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
	OutcomeDegraded  = "degraded"
)

// Metrics holds the prometheus collectors of the service.
type Metrics struct {
	Turns          *prometheus.CounterVec
	Intents        *prometheus.CounterVec
	TurnDuration   prometheus.Histogram
	SessionsActive prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopkeep_turns_total",
				Help: "Total number of turns by outcome",
			},
			[]string{"outcome"},
		),
		Intents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopkeep_intents_total",
				Help: "Total number of applied intents by kind and result",
			},
			[]string{"kind", "result"},
		),
		TurnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shopkeep_turn_duration_seconds",
				Help:    "Duration of turns, including the intent source call",
				Buckets: prometheus.DefBuckets,
			},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "shopkeep_sessions_active",
				Help: "Number of sessions created since start",
			},
		),
	}
	reg.MustRegister(m.Turns, m.Intents, m.TurnDuration, m.SessionsActive)
	return m
}

// SessionCreated is meant for session.WithOnCreate.
func (m *Metrics) SessionCreated(string) {
	m.SessionsActive.Inc()
}

// SessionDeleted decrements the session gauge.
func (m *Metrics) SessionDeleted(string) {
	m.SessionsActive.Dec()
}

// Hooks returns turn hooks that record the metrics.
func (m *Metrics) Hooks() turn.Hooks {
	return turn.Hooks{
		OnIntent: func(ctx context.Context, e *turn.IntentEvent) {
			result := "ok"
			switch {
			case e.Err != nil:
				result = "error"
			case e.ConservationBypassed:
				result = "bypassed"
			}
			m.Intents.WithLabelValues(string(e.Kind), result).Inc()
		},
		OnTurn: func(ctx context.Context, e *turn.TurnEvent) {
			m.Turns.WithLabelValues(TurnOutcome(e.Result)).Inc()
			m.TurnDuration.Observe(e.Duration.Seconds())
		},
	}
}

// TurnOutcome classifies a turn result for the outcome label.
func TurnOutcome(r *turn.Result) string {
	switch {
	case r.Degraded:
		return OutcomeDegraded
	case r.Failed():
		return OutcomeFailed
	case r.Changed:
		return OutcomeApplied
	default:
		return OutcomeUnchanged
	}
}
