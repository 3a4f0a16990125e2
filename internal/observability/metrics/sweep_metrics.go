package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	sweepOnce     sync.Once
	sweepRuns     *prometheus.CounterVec
	sweepDuration prometheus.Histogram
)

func sweepInstruments() (*prometheus.CounterVec, prometheus.Histogram) {
	sweepOnce.Do(func() {
		sweepRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuelsync_alert_sweep_runs_total",
			Help: "Alert sweep runs by result.",
		}, []string{"result"})
		sweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fuelsync_alert_sweep_duration_seconds",
			Help:    "Wall time of a full alert sweep.",
			Buckets: prometheus.DefBuckets,
		})
		prometheus.MustRegister(sweepRuns, sweepDuration)
	})
	return sweepRuns, sweepDuration
}

// ObserveSweep records one scheduler-driven alert sweep.
func ObserveSweep(result string, elapsed time.Duration) {
	runs, duration := sweepInstruments()
	runs.WithLabelValues(result).Inc()
	duration.Observe(elapsed.Seconds())
}
