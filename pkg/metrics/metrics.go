package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arnavshah/roster-scheduler-go/pkg/models"
)

// Recorder receives the outcome of each schedule generation
type Recorder interface {
	RecordGeneration(week models.WeekSelector, result *models.SolveResult, seconds float64)
	RecordFailure(week models.WeekSelector, stage string)
}

// PromSink records schedule generations in Prometheus metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	unfilled *prometheus.HistogramVec
	duration *prometheus.HistogramVec
}

// NewPromSink registers generation metrics on the provided registerer.
// If reg is nil, the default registerer is used. If the collectors are already
// registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generations_total",
		Help: "Total number of generated schedules",
	}, []string{"week", "status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generation_failures_total",
		Help: "Total number of failed schedule generations",
	}, []string{"week", "stage"})
	unfilled := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_unfilled_slots",
		Help:    "Unfilled slots per generated schedule",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
	}, []string{"week"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_generation_seconds",
		Help:    "Time spent generating and storing a schedule",
		Buckets: prometheus.DefBuckets,
	}, []string{"week"})

	var err error
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if failures, err = register(reg, failures); err != nil {
		return nil, err
	}
	if unfilled, err = register(reg, unfilled); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &PromSink{runs: runs, failures: failures, unfilled: unfilled, duration: duration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(C), nil
		}
		return c, err
	}
	return c, nil
}

// RecordGeneration counts a stored schedule and observes its unfilled slots and duration.
func (s *PromSink) RecordGeneration(week models.WeekSelector, result *models.SolveResult, seconds float64) {
	s.runs.WithLabelValues(string(week), string(result.Status)).Inc()
	s.unfilled.WithLabelValues(string(week)).Observe(float64(result.UnfilledCount()))
	s.duration.WithLabelValues(string(week)).Observe(seconds)
}

// RecordFailure counts a generation that did not reach the store.
func (s *PromSink) RecordFailure(week models.WeekSelector, stage string) {
	s.failures.WithLabelValues(string(week), stage).Inc()
}

// Nop discards everything
type Nop struct{}

func (Nop) RecordGeneration(models.WeekSelector, *models.SolveResult, float64) {}
func (Nop) RecordFailure(models.WeekSelector, string) {}
