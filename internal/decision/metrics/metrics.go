package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision module.
type Metrics struct {
	// Fact gathering latencies by step
	StepLatency *prometheus.HistogramVec

	// Step failures by step and provider error category
	StepFailures *prometheus.CounterVec

	// Verdicts by eligibility, matched rule and failed precondition
	Verdicts *prometheus.CounterVec

	// Normalization failures by field
	InvalidFacts *prometheus.CounterVec

	// Overall evaluation latency
	EvaluateLatency prometheus.Histogram
}

// New creates a new Metrics instance with all decision module metrics registered.
func New() *Metrics {
	return &Metrics{
		StepLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "poliza_decision_step_duration_seconds",
			Help:    "Duration of fact gathering steps",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"step"}), // step: "identity_number", "vital_status", "date_of_death", "financial_facts"

		StepFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "poliza_decision_step_failures_total",
			Help: "Total failed fact gathering steps by step and error category",
		}, []string{"step", "category"}),

		Verdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "poliza_decision_verdicts_total",
			Help: "Total verdicts by eligibility, matched rule and failed precondition",
		}, []string{"eligible", "rule", "precondition"}),

		InvalidFacts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "poliza_decision_invalid_facts_total",
			Help: "Total raw facts rejected during normalization by field",
		}, []string{"field"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "poliza_decision_evaluate_duration_seconds",
			Help:    "Duration of full case evaluation including fact gathering",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// ObserveStepLatency records the duration of a fact gathering step.
func (m *Metrics) ObserveStepLatency(step string, d time.Duration) {
	if m != nil {
		m.StepLatency.WithLabelValues(step).Observe(d.Seconds())
	}
}

// IncrementStepFailure records a failed step.
func (m *Metrics) IncrementStepFailure(step, category string) {
	if m != nil {
		m.StepFailures.WithLabelValues(step, category).Inc()
	}
}

// IncrementVerdict records a verdict.
func (m *Metrics) IncrementVerdict(eligible bool, rule, precondition string) {
	if m != nil {
		e := "false"
		if eligible {
			e = "true"
		}
		m.Verdicts.WithLabelValues(e, rule, precondition).Inc()
	}
}

// IncrementInvalidFact records a normalization failure.
func (m *Metrics) IncrementInvalidFact(field string) {
	if m != nil {
		m.InvalidFacts.WithLabelValues(field).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
