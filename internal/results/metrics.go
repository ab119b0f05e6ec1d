package results

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the results pipeline.
type Metrics struct {
	// Pipeline execution
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Output shape
	ResultsCount prometheus.Gauge
	BucketSize   *prometheus.GaugeVec

	// Debounce behaviour
	DebounceSupersededTotal prometheus.Counter

	// Publication
	SinkErrorsTotal prometheus.Counter
}

// NewMetrics creates and registers Prometheus metrics for the pipeline.
//
// Registration happens once per process; later calls return the same
// instance so repeated wiring never panics with a duplicate collector.
//
// Metrics:
//   - showcase_pipeline_runs_total{trigger} - Count of pipeline runs by trigger
//   - showcase_pipeline_run_duration_seconds - Histogram of run durations
//   - showcase_pipeline_results - Size of the last published result list
//   - showcase_pipeline_bucket_size{bucket} - Projects per bucket in the last run
//   - showcase_pipeline_debounce_superseded_total - Title updates coalesced away
//   - showcase_pipeline_sink_errors_total - Failed result publications
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RunsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "showcase_pipeline_runs_total",
					Help: "Total number of results pipeline runs",
				},
				[]string{"trigger"}, // "selected_filters", "title_substring", "projects", "manual"
			),

			RunDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "showcase_pipeline_run_duration_seconds",
					Help:    "Duration of results pipeline runs in seconds",
					Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
				},
			),

			ResultsCount: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "showcase_pipeline_results",
					Help: "Number of projects in the last result list",
				},
			),

			BucketSize: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "showcase_pipeline_bucket_size",
					Help: "Number of projects per bucket in the last run",
				},
				[]string{"bucket"},
			),

			DebounceSupersededTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "showcase_pipeline_debounce_superseded_total",
					Help: "Title search updates superseded before their debounced run",
				},
			),

			SinkErrorsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "showcase_pipeline_sink_errors_total",
					Help: "Total number of failed result publications",
				},
			),
		}
	})

	return globalMetrics
}

// RecordRun records a finished pipeline computation.
func (m *Metrics) RecordRun(duration time.Duration, results int, buckets map[string]int) {
	m.RunDuration.Observe(duration.Seconds())
	m.ResultsCount.Set(float64(results))
	for bucket, size := range buckets {
		m.BucketSize.WithLabelValues(bucket).Set(float64(size))
	}
}

// RecordTrigger counts a run by what caused it.
func (m *Metrics) RecordTrigger(trigger Trigger) {
	m.RunsTotal.WithLabelValues(string(trigger)).Inc()
}

// RecordSuperseded counts a debounced run that was replaced by a newer one.
func (m *Metrics) RecordSuperseded() {
	m.DebounceSupersededTotal.Inc()
}

// RecordSinkError counts a failed publication.
func (m *Metrics) RecordSinkError() {
	m.SinkErrorsTotal.Inc()
}
