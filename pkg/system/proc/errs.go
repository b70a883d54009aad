package proc

import "errors"

var (
	// ErrBadClockRate indicates that the kernel reported a non-positive
	// number of clock ticks per second.
	ErrBadClockRate = errors.New("proc: invalid clock tick rate")

	// ErrNoProcFS indicates that the proc filesystem could not be enumerated.
	ErrNoProcFS = errors.New("proc: cannot enumerate processes")
)
