// Package scheduler drives the sampling loop: list processes, convert their
// ticks into CPU seconds and energy, and overwrite the store.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ja7ad/energy-exporter/pkg/consumption"
	"github.com/ja7ad/energy-exporter/pkg/store"
	"github.com/ja7ad/energy-exporter/pkg/system/proc"
	"github.com/ja7ad/energy-exporter/pkg/types"
)

// ErrBadInterval indicates a non-positive collection interval.
var ErrBadInterval = errors.New("scheduler: interval must be > 0")

// Sampler lists processes and their cumulative ticks.
type Sampler interface {
	Sample() ([]proc.Reading, error)
}

// PassStats summarises one sampling pass. CPUSeconds and Energy are the
// totals over the processes listed in that pass.
type PassStats struct {
	Processes  int
	ReadErrors int
	CPUSeconds types.Seconds
	Energy     types.WattHours
	Duration   time.Duration
	Err        error
}

// Scheduler runs sampling passes at a fixed period, one at a time.
type Scheduler struct {
	interval time.Duration
	sampler  Sampler
	model    *consumption.Model
	rate     proc.ClockRate
	store    *store.Store
	log      *slog.Logger
	metrics  *metrics
}

// New builds a scheduler. model and rate must already be resolved; they are
// never recomputed.
func New(interval time.Duration, sampler Sampler, model *consumption.Model, rate proc.ClockRate, st *store.Store, log *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, ErrBadInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		interval: interval,
		sampler:  sampler,
		model:    model,
		rate:     rate,
		store:    st,
		log:      log,
		metrics:  newMetrics(st.Len),
	}, nil
}

// Register exposes the scheduler's own metrics on reg.
func (s *Scheduler) Register(reg prometheus.Registerer) error {
	for _, c := range s.metrics.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Run performs one pass immediately and then one per tick until ctx is done.
//
// A pass is never interrupted; ctx is only checked between passes. When a
// pass overruns the interval the ticker holds at most one pending tick, so
// the next pass starts right away and missed ticks are dropped.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("sampling started", "interval", s.interval)
	s.Pass()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sampling stopped")
			return nil
		case <-ticker.C:
			s.Pass()
		}
	}
}

// Pass runs a single sampling pass.
func (s *Scheduler) Pass() PassStats {
	start := time.Now()
	s.log.Debug("refreshing metrics")

	readings, err := s.sampler.Sample()
	if err != nil {
		s.log.Error("list processes", "err", err)
		s.metrics.passes.WithLabelValues("error").Inc()
		return PassStats{Duration: time.Since(start), Err: err}
	}

	var stats PassStats
	for _, r := range readings {
		if r.Err != nil {
			stats.ReadErrors++
		}
		res := s.model.Apply(s.rate.Seconds(r.Ticks))
		s.store.Upsert(r.Identity, res.CPUSeconds, res.EnergyWh)
		stats.CPUSeconds += res.CPUSeconds
		stats.Energy += res.EnergyWh
	}
	stats.Processes = len(readings)
	stats.Duration = time.Since(start)

	s.metrics.passes.WithLabelValues("ok").Inc()
	s.metrics.duration.Observe(stats.Duration.Seconds())
	s.metrics.readErrors.Add(float64(stats.ReadErrors))
	s.metrics.sampled.Set(float64(stats.Processes))

	s.log.Debug("pass complete",
		"processes", stats.Processes,
		"read_errors", stats.ReadErrors,
		"cpu_total", stats.CPUSeconds.Humanized(),
		"energy_total", stats.Energy.Humanized(),
		"duration", stats.Duration,
	)
	if stats.Duration > s.interval {
		s.log.Debug("sampling pass overran interval", "duration", stats.Duration, "interval", s.interval)
	}
	return stats
}
