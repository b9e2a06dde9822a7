// Package metrics records Prometheus metrics for sheet evaluations.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ironsheep/omr-eval/internal/grid"
)

// Evaluation status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Recorder holds the evaluation metrics registered on one registry.
type Recorder struct {
	evaluations *prometheus.CounterVec
	duration    prometheus.Histogram
	candidates  prometheus.Histogram
	rows        *prometheus.CounterVec
	score       prometheus.Histogram
}

// New registers the evaluation metrics on reg. A nil reg creates an unregistered
// recorder, useful when metrics are not exported.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		// evaluations counts evaluated sheets by outcome
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omr_evaluations_total",
				Help: "Total number of sheet evaluations",
			},
			[]string{"status"},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "omr_evaluation_duration_seconds",
				Help:    "Sheet evaluation duration in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		candidates: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "omr_bubble_candidates",
				Help:    "Bubble candidates detected per sheet",
				Buckets: []float64{0, 50, 100, 200, 300, 400, 500, 1000},
			},
		),
		// rows tracks grid rows that needed repair
		rows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omr_grid_rows_repaired_total",
				Help: "Total number of grid rows recovered, padded or truncated",
			},
			[]string{"kind"},
		),
		score: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "omr_total_score",
				Help:    "Total score per evaluated sheet",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
	}
}

// ObserveEvaluation records a successful evaluation.
func (r *Recorder) ObserveEvaluation(d time.Duration, stats grid.Stats, total int) {
	r.evaluations.WithLabelValues(StatusOK).Inc()
	r.duration.Observe(d.Seconds())
	r.candidates.Observe(float64(stats.Candidates))
	r.score.Observe(float64(total))

	r.rows.WithLabelValues("recovered").Add(float64(stats.Recovered))
	r.rows.WithLabelValues("padded").Add(float64(stats.Padded))
	r.rows.WithLabelValues("truncated").Add(float64(stats.Truncated))
}

// ObserveError records a failed evaluation.
func (r *Recorder) ObserveError(d time.Duration) {
	r.evaluations.WithLabelValues(StatusError).Inc()
	r.duration.Observe(d.Seconds())
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for the node exporter textfile collector.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
