// Package exporter exposes the metric store and the static host description
// as Prometheus collectors.
package exporter

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ja7ad/energy-exporter/pkg/store"
)

var processLabels = []string{"process_name", "cmdline", "pid"}

// Collector emits one cpu_time_seconds and one energy_watt_hours series per
// stored process identity. Both are gauges: the store holds the latest
// absolute value, not a sum of deltas.
type Collector struct {
	store *store.Store

	cpuTime *prometheus.Desc
	energy  *prometheus.Desc
}

func NewCollector(s *store.Store) *Collector {
	return &Collector{
		store: s,
		cpuTime: prometheus.NewDesc(
			"cpu_time_seconds",
			"Total CPU time spent executing process.",
			processLabels, nil,
		),
		energy: prometheus.NewDesc(
			"energy_watt_hours",
			"Total estimated energy spent executing process.",
			processLabels, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cpuTime
	ch <- c.energy
}

// Collect implements prometheus.Collector. The store is snapshotted first;
// nothing is locked while metrics are built and encoded.
//
// Identities that differ only in invalid UTF-8 bytes share one label set
// once sanitised. Only the first of them in snapshot order is emitted.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.store.Snapshot()
	seen := make(map[[3]string]struct{}, len(snap))
	for _, e := range snap {
		key := [3]string{
			labelValue(e.Identity.Name),
			labelValue(e.Identity.Cmdline),
			e.Identity.PIDString(),
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		lv := key[:]
		ch <- prometheus.MustNewConstMetric(c.cpuTime, prometheus.GaugeValue, e.Sample.CPUSeconds.Float64(), lv...)
		ch <- prometheus.MustNewConstMetric(c.energy, prometheus.GaugeValue, e.Sample.Energy.Float64(), lv...)
	}
}

// labelValue replaces invalid UTF-8, which argv and comm may legally contain
// but label values may not.
func labelValue(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}
