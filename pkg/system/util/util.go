package util

import "math"

// TruncU64 truncates x toward zero into a uint64.
// NaN and negative values map to 0, values beyond the uint64 range saturate.
func TruncU64(x float64) uint64 {
	if math.IsNaN(x) || x <= 0 {
		return 0
	}
	if x >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(x)
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
