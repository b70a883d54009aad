package exporter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// NewRegistry returns a registry pre-loaded with the Go runtime and process
// collectors, and a Registerer on top of it that adds a hostname label to
// everything registered through it.
func NewRegistry(hostname string) (*prometheus.Registry, prometheus.Registerer) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, prometheus.WrapRegistererWith(prometheus.Labels{"hostname": hostname}, reg)
}
