package observability

import (
	"context"
	"fmt"

	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values of rulebook_rules_total.
const (
	ResultMatched   = "matched"
	ResultUnmatched = "unmatched"
	ResultError     = "error"
)

// Status label values of rulebook_runs_total.
const (
	StatusComplete = "complete"
	StatusPartial  = "partial"
	StatusAborted  = "aborted"
)

// Metrics records rule evaluations in Prometheus collectors.
type Metrics struct {
	rules        *prometheus.CounterVec
	runs         *prometheus.CounterVec
	ruleDuration prometheus.Histogram
	runDuration  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg means prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		rules: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rulebook_rules_total",
				Help: "Total number of rules evaluated, by result",
			},
			[]string{"result"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rulebook_runs_total",
				Help: "Total number of evaluation passes, by status",
			},
			[]string{"status"},
		),
		ruleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rulebook_rule_duration_seconds",
			Help:    "Time spent decoding and evaluating a single rule",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rulebook_run_duration_seconds",
			Help:    "Duration of evaluation passes",
			Buckets: prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{m.rules, m.runs, m.ruleDuration, m.runDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRuleResult: func(_ context.Context, e *domain.RuleEvent) {
			result := ResultUnmatched
			switch {
			case e.Err != nil:
				result = ResultError
			case e.Matched:
				result = ResultMatched
			}
			m.rules.WithLabelValues(result).Inc()
			m.ruleDuration.Observe(e.Duration.Seconds())
		},
		OnRunAbort: func(_ context.Context, e *domain.RunEvent) {
			m.rules.WithLabelValues(ResultError).Inc()
			m.runs.WithLabelValues(StatusAborted).Inc()
			m.runDuration.Observe(e.Report.Duration.Seconds())
		},
		OnRunComplete: func(_ context.Context, e *domain.RunEvent) {
			status := StatusComplete
			if e.Report.Failed > 0 {
				status = StatusPartial
			}
			m.runs.WithLabelValues(status).Inc()
			m.runDuration.Observe(e.Report.Duration.Seconds())
		},
	}
}
