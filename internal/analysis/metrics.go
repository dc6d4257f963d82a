package analysis

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are optional; every method is a no-op on a nil receiver.
type metrics struct {
	stageDuration *prometheus.HistogramVec
	filesScanned  prometheus.Counter
	runs          *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &metrics{
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codescope_stage_duration_seconds",
				Help:    "Duration of analysis stages in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"stage"},
		),
		filesScanned: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "codescope_files_scanned_total",
				Help: "Total number of files enumerated by the walker",
			},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codescope_analyses_total",
				Help: "Total number of analysis runs by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *metrics) observeStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *metrics) addFiles(n int) {
	if m == nil {
		return
	}
	m.filesScanned.Add(float64(n))
}

func (m *metrics) observeRun(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}
