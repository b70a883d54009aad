package proc

import "strconv"

// Identity is the key a process is tracked under. It is rebuilt on every
// pass, so a reused pid only becomes a new series when name or cmdline differ.
type Identity struct {
	PID     int
	Name    string
	Cmdline string
}

// PIDString returns the pid as a decimal label value.
func (id Identity) PIDString() string { return strconv.Itoa(id.PID) }
