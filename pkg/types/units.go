package types

import "fmt"

// Seconds is a whole number of CPU seconds.
type Seconds uint64

// Humanized returns a human-readable duration with automatic unit (s, m, h, d).
func (s Seconds) Humanized() string {
	v := float64(s)
	switch {
	case s >= 86400:
		return fmt.Sprintf("%.2f d", v/86400)
	case s >= 3600:
		return fmt.Sprintf("%.2f h", v/3600)
	case s >= 60:
		return fmt.Sprintf("%.2f m", v/60)
	default:
		return fmt.Sprintf("%d s", s)
	}
}

// Float64 returns the value as float64 for metric exposition.
func (s Seconds) Float64() float64 { return float64(s) }

// WattHours is a whole number of watt-hours.
type WattHours uint64

// Humanized returns a human-readable energy with automatic unit (Wh, kWh, MWh).
func (w WattHours) Humanized() string {
	v := float64(w)
	switch {
	case w >= 1_000_000:
		return fmt.Sprintf("%.2f MWh", v/1_000_000)
	case w >= 1_000:
		return fmt.Sprintf("%.2f kWh", v/1_000)
	default:
		return fmt.Sprintf("%d Wh", w)
	}
}

// Float64 returns the value as float64 for metric exposition.
func (w WattHours) Float64() float64 { return float64(w) }
