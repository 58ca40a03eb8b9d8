// Package metrics exposes Prometheus collectors for scenario sessions and
// wires them into the engine's lifecycle hooks.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/airband-io/airband/pkg/domain"
)

// Collector holds the session-level collectors.
type Collector struct {
	NodeVisits         *prometheus.CounterVec
	ValidationOutcomes *prometheus.CounterVec
	ValidationScore    prometheus.Histogram
	SessionsCompleted  prometheus.Counter
}

// NewCollector creates the collectors and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "airband",
				Name:      "node_visits_total",
				Help:      "Node entries by node id and type.",
			},
			[]string{"node_id", "node_type"},
		),
		ValidationOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "airband",
				Name:      "validation_outcomes_total",
				Help:      "Accepted validation outcomes by result.",
			},
			[]string{"result"},
		),
		ValidationScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "airband",
				Name:      "validation_score",
				Help:      "Score distribution of accepted validation outcomes.",
				Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
		SessionsCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "airband",
				Name:      "sessions_completed_total",
				Help:      "Sessions that reached the terminal state.",
			},
		),
	}
	reg.MustRegister(c.NodeVisits, c.ValidationOutcomes, c.ValidationScore, c.SessionsCompleted)
	return c
}

// Hooks returns lifecycle hooks feeding the collectors.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, _ string, node *domain.Node) {
			c.NodeVisits.WithLabelValues(node.ID, string(node.Type)).Inc()
		},
		OnEvaluationResolved: func(_ context.Context, _, _ string, outcome domain.ValidationOutcome) {
			result := "fail"
			if outcome.IsCorrect {
				result = "pass"
			}
			c.ValidationOutcomes.WithLabelValues(result).Inc()
			c.ValidationScore.Observe(outcome.Score)
		},
		OnSessionComplete: func(_ context.Context, _ string) {
			c.SessionsCompleted.Inc()
		},
	}
}
