//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/energy-exporter/pkg/config"
	"github.com/ja7ad/energy-exporter/pkg/consumption"
	"github.com/ja7ad/energy-exporter/pkg/system/host"
	"github.com/ja7ad/energy-exporter/pkg/system/proc"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// freeAddr returns a loopback address that nothing is listening on.
func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func assertNotBound(t *testing.T, addr string) {
	t.Helper()
	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err, "%s must not be bound after a failed startup", addr)
	_ = ln.Close()
}

func fakeProc(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "42")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "comm"), []byte("worker\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdline"), []byte("worker\x00--busy\x00"), 0o644))
	stat := fmt.Sprintf("42 (worker) S 1 42 42 0 -1 0 0 0 0 0 %d %d%s\n",
		600_000, 400_000, strings.Repeat(" 0", 40))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stat"), []byte(stat), 0o644))
	return root
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.MetricsAddress = freeAddr(t)
	cfg.ProcPath = fakeProc(t)
	cfg.CollectionInterval = 10
	return cfg
}

func fixedStartup(info host.Info) startup {
	return startup{
		clockRate: func() (proc.ClockRate, error) { return proc.NewClockRate(100) },
		describe:  func(context.Context) (host.Info, error) { return info, nil },
	}
}

var testHost = host.Info{
	Hostname:      "box",
	OS:            "ubuntu",
	OSVersion:     "24.04",
	KernelVersion: "6.8.0",
	CPUVendor:     "GenuineIntel",
	CPUModel:      "i7",
	PhysicalCores: 7,
}

func TestSetup_ClockRateFailureStopsStartup(t *testing.T) {
	cfg := testConfig(t)
	described := false
	su := startup{
		clockRate: func() (proc.ClockRate, error) { return proc.NewClockRate(0) },
		describe: func(context.Context) (host.Info, error) {
			described = true
			return testHost, nil
		},
	}

	app, err := setup(context.Background(), cfg, discard(), su)
	require.Error(t, err)
	assert.Nil(t, app)
	assert.True(t, errors.Is(err, proc.ErrBadClockRate))
	assert.False(t, described, "host is described only after the clock rate resolves")
	assertNotBound(t, cfg.MetricsAddress)
}

func TestSetup_HostFailureStopsStartup(t *testing.T) {
	cfg := testConfig(t)
	su := fixedStartup(testHost)
	su.describe = func(context.Context) (host.Info, error) { return host.Info{}, host.ErrNoCores }

	_, err := setup(context.Background(), cfg, discard(), su)
	require.Error(t, err)
	assert.True(t, errors.Is(err, host.ErrNoCores))
	assertNotBound(t, cfg.MetricsAddress)
}

func TestSetup_ModelFailureStopsStartup(t *testing.T) {
	cfg := testConfig(t)
	noCores := testHost
	noCores.PhysicalCores = 0

	_, err := setup(context.Background(), cfg, discard(), fixedStartup(noCores))
	require.Error(t, err)
	assert.True(t, errors.Is(err, consumption.ErrNoCores))
	assertNotBound(t, cfg.MetricsAddress)
}

func TestSetup_BindFailure(t *testing.T) {
	cfg := testConfig(t)
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	cfg.MetricsAddress = busy.Addr().String()

	_, err = setup(context.Background(), cfg, discard(), fixedStartup(testHost))
	require.Error(t, err)
}

func TestSetup_ServesConfiguredModel(t *testing.T) {
	cfg := testConfig(t)
	cfg.AverageDiePower = 0

	app, err := setup(context.Background(), cfg, discard(), fixedStartup(testHost))
	require.NoError(t, err)
	addr := app.srv.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.run(ctx) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}
		body = string(b)
		return strings.Contains(body, "cpu_time_seconds{")
	}, 5*time.Second, 20*time.Millisecond)

	assert.Contains(t, body, `average_core_power="0",average_die_power="0"`)
	assert.Contains(t, body, `cpu_time_seconds{cmdline="worker --busy",hostname="box",pid="42",process_name="worker"} 10000`)
	assert.Contains(t, body, `energy_watt_hours{cmdline="worker --busy",hostname="box",pid="42",process_name="worker"} 0`)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("exporter did not stop")
	}
}
