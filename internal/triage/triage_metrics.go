package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	AssessmentsStarted prometheus.Counter
	TransitionsTotal   *prometheus.CounterVec
	NoticesTotal       *prometheus.CounterVec
	DecisionsTotal     *prometheus.CounterVec
	TimeToResult       prometheus.Histogram
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AssessmentsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carepath_assessments_started_total",
			Help: "Total assessments begun.",
		}),
		TransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carepath_wizard_transitions_total",
			Help: "Wizard events by source step, action and outcome.",
		}, []string{"step", "action", "outcome"}),
		NoticesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carepath_wizard_notices_total",
			Help: "Validation notices shown, by step.",
		}, []string{"step"}),
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carepath_decisions_total",
			Help: "Classification decisions by urgency, rule and source.",
		}, []string{"urgency", "rule", "source"}),
		TimeToResult: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "carepath_time_to_result_seconds",
			Help:    "Time from starting an assessment to its result.",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10), // 5s .. ~42m
		}),
	}

	reg.MustRegister(
		m.AssessmentsStarted,
		m.TransitionsTotal,
		m.NoticesTotal,
		m.DecisionsTotal,
		m.TimeToResult,
	)

	return m
}

// Hooks returns service Hooks that increment the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnBegin: func() {
			m.AssessmentsStarted.Inc()
		},
		OnTransition: func(from Step, action Action, outcome string) {
			m.TransitionsTotal.WithLabelValues(string(from), string(action), outcome).Inc()
		},
		OnNotice: func(step Step) {
			m.NoticesTotal.WithLabelValues(string(step)).Inc()
		},
		OnDecision: func(source string, d Decision) {
			m.DecisionsTotal.WithLabelValues(string(d.Urgency), d.Rule, source).Inc()
		},
		OnComplete: func(elapsed float64) {
			m.TimeToResult.Observe(elapsed)
		},
	}
}
