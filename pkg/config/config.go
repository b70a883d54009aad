// Package config resolves exporter settings from, in increasing precedence:
// built-in defaults, a YAML file, a .env file plus the process environment,
// and command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ja7ad/energy-exporter/pkg/consumption"
	"github.com/ja7ad/energy-exporter/pkg/system/util"
)

const (
	DefaultMetricsAddress     = "127.0.0.1:9090"
	DefaultCollectionInterval = 100 // ms
	DefaultProcPath           = "/proc"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"

	EnvMetricsAddress     = "METRICS_ADDRESS"
	EnvCollectionInterval = "COLLECTION_INTERVAL"
	EnvAverageDiePower    = "AVERAGE_DIE_POWER"
	EnvProcPath           = "PROC_PATH"
	EnvLogLevel           = "LOG_LEVEL"
	EnvLogFormat          = "LOG_FORMAT"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	// Address on which to serve observability endpoints.
	MetricsAddress string `yaml:"metrics_address"`
	// Interval in milliseconds at which to collect process information.
	CollectionInterval int64 `yaml:"collection_interval"`
	// Average power consumption of the CPU die in Watts.
	AverageDiePower float64 `yaml:"average_die_power"`
	ProcPath        string  `yaml:"proc_path"`
	LogLevel        string  `yaml:"log_level"`
	LogFormat       string  `yaml:"log_format"`
}

func Default() *Config {
	return &Config{
		MetricsAddress:     DefaultMetricsAddress,
		CollectionInterval: DefaultCollectionInterval,
		AverageDiePower:    consumption.DefaultAverageDiePower,
		ProcPath:           DefaultProcPath,
		LogLevel:           DefaultLogLevel,
		LogFormat:          DefaultLogFormat,
	}
}

// Load returns defaults overlaid with the YAML file at path (skipped when
// path is empty), then with the environment. envFiles are loaded into the
// environment first without overriding variables already set; with none
// given, ./.env is tried. Missing env files are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays values found through lookup. Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(k string) (string, bool) {
		v, ok := lookup(k)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvMetricsAddress); ok {
		c.MetricsAddress = v
	}
	if v, ok := get(EnvCollectionInterval); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalid, EnvCollectionInterval, v, err)
		}
		c.CollectionInterval = n
	}
	if v, ok := get(EnvAverageDiePower); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalid, EnvAverageDiePower, v, err)
		}
		c.AverageDiePower = f
	}
	if v, ok := get(EnvProcPath); ok {
		c.ProcPath = v
	}
	if v, ok := get(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := get(EnvLogFormat); ok {
		c.LogFormat = v
	}
	return nil
}

// Interval returns the collection interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.CollectionInterval) * time.Millisecond
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.MetricsAddress) == "" {
		return fmt.Errorf("%w: metrics address is empty", ErrInvalid)
	}
	if c.CollectionInterval <= 0 {
		return fmt.Errorf("%w: collection interval must be > 0 ms, got %d", ErrInvalid, c.CollectionInterval)
	}
	if c.AverageDiePower < 0 || !util.IsFinite(c.AverageDiePower) {
		return fmt.Errorf("%w: average die power must be a finite value >= 0, got %v", ErrInvalid, c.AverageDiePower)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.LogFormat)
	}
	return nil
}
