package config

import (
	"github.com/spf13/pflag"
)

// Flags binds command-line overrides to a flag set.
type Flags struct {
	path string
	v    Config
}

// RegisterFlags adds the exporter flags to fs. Flag defaults mirror Default
// but only flags that were explicitly set override lower layers.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	d := Default()
	f := &Flags{}

	fs.StringVar(&f.path, "config", "", "path to a YAML config file")
	fs.StringVarP(&f.v.MetricsAddress, "metrics-address", "m", d.MetricsAddress,
		"address on which to serve observability endpoints [$"+EnvMetricsAddress+"]")
	fs.Int64VarP(&f.v.CollectionInterval, "collection-interval", "c", d.CollectionInterval,
		"interval in milliseconds at which to collect process information [$"+EnvCollectionInterval+"]")
	fs.Float64VarP(&f.v.AverageDiePower, "average-die-power", "a", d.AverageDiePower,
		"average power consumption of the CPU die in Watts [$"+EnvAverageDiePower+"]")
	fs.StringVar(&f.v.ProcPath, "proc-path", d.ProcPath, "proc filesystem mount point [$"+EnvProcPath+"]")
	fs.StringVar(&f.v.LogLevel, "log-level", d.LogLevel, "log level: debug, info, warn, error [$"+EnvLogLevel+"]")
	fs.StringVar(&f.v.LogFormat, "log-format", d.LogFormat, "log format: text, json [$"+EnvLogFormat+"]")
	return f
}

// Resolve loads file and environment layers, applies the flags that were
// set on fs, and validates the result.
func (f *Flags) Resolve(fs *pflag.FlagSet, envFiles ...string) (*Config, error) {
	cfg, err := Load(f.path, envFiles...)
	if err != nil {
		return nil, err
	}

	if fs.Changed("metrics-address") {
		cfg.MetricsAddress = f.v.MetricsAddress
	}
	if fs.Changed("collection-interval") {
		cfg.CollectionInterval = f.v.CollectionInterval
	}
	if fs.Changed("average-die-power") {
		cfg.AverageDiePower = f.v.AverageDiePower
	}
	if fs.Changed("proc-path") {
		cfg.ProcPath = f.v.ProcPath
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.v.LogLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = f.v.LogFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
