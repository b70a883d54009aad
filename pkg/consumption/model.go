package consumption

import "github.com/ja7ad/energy-exporter/pkg/types"

// Config holds power model inputs.
// Units:
//   - AverageDiePower: Watts for the whole CPU package. Can be assumed to be
//     the TDP when the host is well utilised (most cores active close to the
//     upper frequency).
type Config struct {
	AverageDiePower float64
}

// DefaultAverageDiePower is a plausible mobile-class CPU TDP in Watts.
const DefaultAverageDiePower = 35.0

// _defaultConfig returns a Config pre-filled with the default die power.
func _defaultConfig() *Config {
	return &Config{
		AverageDiePower: DefaultAverageDiePower,
	}
}

// Result is the converted CPU time and modeled energy for one process,
// truncated to whole units at the storage boundary.
type Result struct {
	CPUSeconds types.Seconds
	EnergyWh   types.WattHours
}
