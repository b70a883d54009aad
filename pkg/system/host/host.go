// Package host collects the static host and CPU description exported once
// at startup. None of it is refreshed while the exporter runs.
package host

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

const unknown = "unknown"

// ErrNoCores indicates that neither the physical nor the logical core count
// could be determined.
var ErrNoCores = errors.New("host: cannot determine physical core count")

// Info is the static description of the host.
type Info struct {
	Hostname      string
	OS            string
	OSVersion     string
	KernelVersion string

	CPUVendor     string
	CPUModel      string
	PhysicalCores int
}

var (
	countsFn   = cpu.CountsWithContext
	cpuInfoFn  = cpu.InfoWithContext
	hostInfoFn = host.InfoWithContext
)

// PhysicalCores returns the number of physical cores. When the platform does
// not report physical topology (some VMs and ARM boards) the logical count
// is used instead.
func PhysicalCores(ctx context.Context) (int, error) {
	n, err := countsFn(ctx, false)
	if err == nil && n > 0 {
		return n, nil
	}
	logical, lerr := countsFn(ctx, true)
	if lerr == nil && logical > 0 {
		return logical, nil
	}
	if cause := errors.Join(err, lerr); cause != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoCores, cause)
	}
	return 0, ErrNoCores
}

// Describe gathers host identity and CPU description. Only the core count is
// mandatory; any other field that cannot be read is reported as "unknown".
func Describe(ctx context.Context) (Info, error) {
	cores, err := PhysicalCores(ctx)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Hostname:      unknown,
		OS:            unknown,
		OSVersion:     unknown,
		KernelVersion: unknown,
		CPUVendor:     unknown,
		CPUModel:      unknown,
		PhysicalCores: cores,
	}

	if hi, err := hostInfoFn(ctx); err == nil && hi != nil {
		info.Hostname = orUnknown(hi.Hostname)
		info.OS = orUnknown(hi.Platform)
		info.OSVersion = orUnknown(hi.PlatformVersion)
		info.KernelVersion = orUnknown(hi.KernelVersion)
	}
	if info.Hostname == unknown {
		if h, err := os.Hostname(); err == nil && h != "" {
			info.Hostname = h
		}
	}

	if cs, err := cpuInfoFn(ctx); err == nil && len(cs) > 0 {
		info.CPUVendor = orUnknown(cs[0].VendorID)
		info.CPUModel = orUnknown(cs[0].ModelName)
	}

	return info, nil
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
