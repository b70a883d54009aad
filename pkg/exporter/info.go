package exporter

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ja7ad/energy-exporter/pkg/consumption"
	"github.com/ja7ad/energy-exporter/pkg/system/host"
	"github.com/ja7ad/energy-exporter/pkg/system/proc"
)

// InfoCollector emits system_info and cpu_info. Both are built once from
// values resolved at startup and never recomputed.
type InfoCollector struct {
	system prometheus.Metric
	cpu    prometheus.Metric
}

func NewInfoCollector(h host.Info, m *consumption.Model, rate proc.ClockRate) *InfoCollector {
	systemDesc := prometheus.NewDesc(
		"system_info", "Host OS information.",
		[]string{"os", "os_version", "kernel_version", "jiffy_in_seconds"}, nil,
	)
	cpuDesc := prometheus.NewDesc(
		"cpu_info", "Host CPU information.",
		[]string{"vendor", "model", "average_die_power", "average_core_power", "num_physical_cores"}, nil,
	)

	return &InfoCollector{
		system: prometheus.MustNewConstMetric(systemDesc, prometheus.GaugeValue, 1,
			labelValue(h.OS),
			labelValue(h.OSVersion),
			labelValue(h.KernelVersion),
			fmtFloat(rate.SecondsPerTick),
		),
		cpu: prometheus.MustNewConstMetric(cpuDesc, prometheus.GaugeValue, 1,
			labelValue(h.CPUVendor),
			labelValue(h.CPUModel),
			fmtFloat(m.AverageDiePower()),
			fmtFloat(m.AverageCorePower()),
			strconv.Itoa(m.PhysicalCores()),
		),
	}
}

// Describe implements prometheus.Collector.
func (c *InfoCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.system.Desc()
	ch <- c.cpu.Desc()
}

// Collect implements prometheus.Collector.
func (c *InfoCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- c.system
	ch <- c.cpu
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
