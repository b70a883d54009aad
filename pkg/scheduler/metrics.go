package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "energy_exporter"

type metrics struct {
	passes      *prometheus.CounterVec
	duration    prometheus.Histogram
	readErrors  prometheus.Counter
	sampled     prometheus.Gauge
	storeLength prometheus.GaugeFunc
}

func newMetrics(storeLen func() int) *metrics {
	return &metrics{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sampling",
			Name:      "passes_total",
			Help:      "Sampling passes run, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sampling",
			Name:      "pass_duration_seconds",
			Help:      "Wall time of one sampling pass.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		readErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_read_errors_total",
			Help:      "Per-process accounting reads that failed and were recorded as zero.",
		}),
		sampled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "processes_sampled",
			Help:      "Processes seen in the last sampling pass.",
		}),
		storeLength: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_entries",
			Help:      "Process identities held in the store. Entries are never evicted.",
		}, func() float64 { return float64(storeLen()) }),
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.passes, m.duration, m.readErrors, m.sampled, m.storeLength}
}
