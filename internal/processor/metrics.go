package processor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the pipeline.
type Metrics struct {
	RunsTotal       *prometheus.CounterVec
	StageSeconds    *prometheus.HistogramVec
	RenderTimeouts  prometheus.Counter
	RecordFallbacks prometheus.Counter
}

// NewMetrics creates the pipeline collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minutes_pipeline_runs_total",
				Help: "Pipeline runs by terminal status",
			},
			[]string{"status"},
		),
		StageSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "minutes_stage_seconds",
				Help:    "Time spent in each pipeline stage",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"stage"},
		),
		RenderTimeouts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "minutes_render_timeouts_total",
				Help: "Renders abandoned after exceeding the render budget",
			},
		),
		RecordFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "minutes_record_fallbacks_total",
				Help: "Structured records kept as raw model text",
			},
		),
	}
}
