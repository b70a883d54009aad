package consumption

import (
	"errors"
	"fmt"

	"github.com/ja7ad/energy-exporter/pkg/system/util"
	"github.com/ja7ad/energy-exporter/pkg/types"
)

var (
	// ErrNoCores indicates a non-positive physical core count.
	ErrNoCores = errors.New("consumption: physical core count must be > 0")

	// ErrBadPower indicates a negative or non-finite die power.
	ErrBadPower = errors.New("consumption: average die power must be a finite value >= 0")
)

const secondsPerHour = 3600.0

// Model attributes a fixed share of the die power to every busy core:
//
//	P_core = P_die / N_physical
//	E(Wh)  = t_cpu(s) * P_core / 3600
//
// It is built once at startup and is immutable afterwards, so the core power
// stays stable even if the reported core count changes while running.
type Model struct {
	averageDiePower  float64
	averageCorePower float64
	physicalCores    int
}

// New creates a model from cfg and the physical core count.
// A nil cfg uses the defaults. A zero die power is taken as given.
func New(cfg *Config, physicalCores int) (*Model, error) {
	if cfg == nil {
		cfg = _defaultConfig()
	}
	return NewModel(cfg.AverageDiePower, physicalCores)
}

// NewModel creates a model from an explicit die power in Watts.
func NewModel(averageDiePower float64, physicalCores int) (*Model, error) {
	if physicalCores <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNoCores, physicalCores)
	}
	if averageDiePower < 0 || !util.IsFinite(averageDiePower) {
		return nil, fmt.Errorf("%w: got %v", ErrBadPower, averageDiePower)
	}
	return &Model{
		averageDiePower:  averageDiePower,
		averageCorePower: averageDiePower / float64(physicalCores),
		physicalCores:    physicalCores,
	}, nil
}

// AverageDiePower returns the configured die power in Watts.
func (m *Model) AverageDiePower() float64 { return m.averageDiePower }

// AverageCorePower returns the modeled Watts per physical core.
func (m *Model) AverageCorePower() float64 { return m.averageCorePower }

// PhysicalCores returns the core count the model was built with.
func (m *Model) PhysicalCores() int { return m.physicalCores }

// Energy returns the modeled energy in Wh for the given CPU seconds,
// without truncation.
func (m *Model) Energy(cpuSeconds float64) float64 {
	return cpuSeconds * m.averageCorePower / secondsPerHour
}

// Apply converts cumulative CPU seconds into the stored CPU seconds and
// energy. Both values are truncated to whole units here; energy is derived
// from the untruncated seconds. Zero seconds yield a zero Result.
func (m *Model) Apply(sec float64) Result {
	// TODO: sub-second and sub-Wh precision is dropped; switch the store to
	// float64 bits if consumers need it.
	return Result{
		CPUSeconds: types.Seconds(util.TruncU64(sec)),
		EnergyWh:   types.WattHours(util.TruncU64(m.Energy(sec))),
	}
}
