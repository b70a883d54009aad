//go:build linux

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ja7ad/energy-exporter/pkg/config"
	"github.com/ja7ad/energy-exporter/pkg/consumption"
	"github.com/ja7ad/energy-exporter/pkg/exporter"
	"github.com/ja7ad/energy-exporter/pkg/logging"
	"github.com/ja7ad/energy-exporter/pkg/scheduler"
	"github.com/ja7ad/energy-exporter/pkg/server"
	"github.com/ja7ad/energy-exporter/pkg/store"
	"github.com/ja7ad/energy-exporter/pkg/system/host"
	"github.com/ja7ad/energy-exporter/pkg/system/proc"
)

func main() {
	root := &cobra.Command{
		Use:   "energy-exporter",
		Short: "Per-process CPU time and energy estimate exporter",
		Long: `energy-exporter samples the cumulative CPU time (user + kernel) of every
process on a Linux host and publishes it, together with a modeled energy
estimate, as Prometheus metrics.

The model splits a configured average die power evenly across the physical
cores and charges each process for the CPU seconds it has consumed:

    E(Wh) = cpu_seconds * (average_die_power / physical_cores) / 3600

Endpoints:
  /metrics   Prometheus exposition
  /readyz    readiness probe
  /livez     liveness probe

Examples:
  energy-exporter -m 0.0.0.0:9090 -c 1000 -a 65
  AVERAGE_DIE_POWER=15 energy-exporter --log-format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := config.RegisterFlags(root.Flags())
	root.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := flags.Resolve(cmd.Flags())
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	}

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// startup holds the host lookups resolved once before anything is served.
type startup struct {
	clockRate func() (proc.ClockRate, error)
	describe  func(context.Context) (host.Info, error)
}

func defaultStartup() startup {
	return startup{
		clockRate: proc.ResolveClockRate,
		describe:  host.Describe,
	}
}

// exporterApp is a fully wired exporter whose listener is already bound.
type exporterApp struct {
	log   *slog.Logger
	srv   *server.Server
	sched *scheduler.Scheduler
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	app, err := setup(ctx, cfg, log, defaultStartup())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return app.run(ctx)
}

// setup resolves the clock rate, the host, and the power model, wires the
// sampling pipeline and binds the metrics address last. It returns the
// first fatal error; nothing is listening when it fails.
func setup(ctx context.Context, cfg *config.Config, log *slog.Logger, su startup) (*exporterApp, error) {
	rate, err := su.clockRate()
	if err != nil {
		return nil, fmt.Errorf("resolve clock rate: %w", err)
	}
	log.Info(fmt.Sprintf("1 jiffy is %v seconds", rate.SecondsPerTick), "clk_tck", rate.TicksPerSecond)

	info, err := su.describe(ctx)
	if err != nil {
		return nil, fmt.Errorf("describe host: %w", err)
	}

	// TODO: discover die power from the CPU model (TDP) or from RAPL where
	// the platform exposes it, instead of requiring it as configuration.
	model, err := consumption.New(&consumption.Config{AverageDiePower: cfg.AverageDiePower}, info.PhysicalCores)
	if err != nil {
		return nil, fmt.Errorf("power model: %w", err)
	}
	log.Info("power model",
		"average_die_power", model.AverageDiePower(),
		"num_physical_cores", model.PhysicalCores(),
		"average_core_power", model.AverageCorePower(),
	)

	sampler, err := proc.NewSampler(cfg.ProcPath, log)
	if err != nil {
		return nil, err
	}

	st := store.New()
	sched, err := scheduler.New(cfg.Interval(), sampler, model, rate, st, log)
	if err != nil {
		return nil, err
	}

	reg, wrapped := exporter.NewRegistry(info.Hostname)
	if err := wrapped.Register(exporter.NewInfoCollector(info, model, rate)); err != nil {
		return nil, err
	}
	if err := wrapped.Register(exporter.NewCollector(st)); err != nil {
		return nil, err
	}
	if err := sched.Register(reg); err != nil {
		return nil, err
	}

	srv := server.New(cfg.MetricsAddress, reg, log)
	if err := srv.Listen(); err != nil {
		return nil, err
	}
	return &exporterApp{log: log, srv: srv, sched: sched}, nil
}

// run serves and samples until ctx is cancelled.
func (a *exporterApp) run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.srv.Serve(gCtx) })
	g.Go(func() error { return a.sched.Run(gCtx) })

	if err := g.Wait(); err != nil {
		return err
	}
	a.log.Info("interrupted, exiting")
	return nil
}
