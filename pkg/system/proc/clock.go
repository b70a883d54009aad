package proc

import (
	"fmt"
	"os"
	"strconv"

	"github.com/tklauser/go-sysconf"
)

// ClockRate converts the kernel's per-process CPU accounting unit (jiffies)
// into seconds. It is resolved once at startup and never changes.
type ClockRate struct {
	TicksPerSecond int64
	SecondsPerTick float64
}

// NewClockRate builds a ClockRate from a ticks-per-second value.
func NewClockRate(ticksPerSecond int64) (ClockRate, error) {
	if ticksPerSecond <= 0 {
		return ClockRate{}, fmt.Errorf("%w: %d", ErrBadClockRate, ticksPerSecond)
	}
	return ClockRate{
		TicksPerSecond: ticksPerSecond,
		SecondsPerTick: 1 / float64(ticksPerSecond),
	}, nil
}

// ResolveClockRate queries sysconf(_SC_CLK_TCK).
// The CLK_TCK env var, when set to a positive integer, takes precedence
// (useful for testing).
func ResolveClockRate() (ClockRate, error) {
	if v, err := strconv.ParseInt(os.Getenv("CLK_TCK"), 10, 64); err == nil && v > 0 {
		return NewClockRate(v)
	}
	tck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil {
		return ClockRate{}, fmt.Errorf("sysconf(SC_CLK_TCK): %w", err)
	}
	return NewClockRate(tck)
}

// Seconds converts ticks to (fractional) seconds.
func (c ClockRate) Seconds(ticks uint64) float64 {
	return float64(ticks) * c.SecondsPerTick
}
