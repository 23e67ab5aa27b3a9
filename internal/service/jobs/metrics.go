package jobs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	filesProcessed *prometheus.CounterVec
	fileDuration   prometheus.Histogram
	jobsQueued     prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		filesProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "certzone_files_processed_total",
			Help: "Processed input files by result",
		}, []string{"result"}),
		fileDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "certzone_file_duration_seconds",
			Help:    "Time spent on one input file",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		jobsQueued: f.NewGauge(prometheus.GaugeOpts{
			Name: "certzone_jobs_queued",
			Help: "Jobs waiting for a worker",
		}),
	}
}

// observeFile records one file; result is "ok" or the failure kind.
func (m *metrics) observeFile(result string, start time.Time) {
	m.filesProcessed.WithLabelValues(result).Inc()
	m.fileDuration.Observe(time.Since(start).Seconds())
}
