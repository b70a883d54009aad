//go:build linux

package proc

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/procfs"
)

// DefaultMountPoint is where the kernel exposes the proc filesystem.
const DefaultMountPoint = procfs.DefaultMountPoint

// Reading is one process' cumulative CPU accounting for a single pass.
// Err is set when the accounting record could not be read, in which case
// Ticks is zero.
type Reading struct {
	Identity Identity
	Ticks    uint64 // utime + stime (jiffies)
	Err      error
}

// Sampler enumerates processes under a proc mount and reads their
// cumulative user+kernel ticks.
type Sampler struct {
	fs  procfs.FS
	log *slog.Logger
}

// NewSampler opens the proc filesystem at mountPoint ("" means /proc).
func NewSampler(mountPoint string, log *slog.Logger) (*Sampler, error) {
	if mountPoint == "" {
		mountPoint = DefaultMountPoint
	}
	if log == nil {
		log = slog.Default()
	}
	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoProcFS, err)
	}
	return &Sampler{fs: fs, log: log}, nil
}

// Sample reads every process currently listed in /proc, in enumeration order.
//
// A process whose stat record cannot be read (exited between listing and
// read, permission denied, malformed record) yields a zero Reading with Err
// set; it never aborts the pass. Only a failure to list /proc itself is
// returned as an error.
func (s *Sampler) Sample() ([]Reading, error) {
	procs, err := s.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoProcFS, err)
	}

	out := make([]Reading, 0, len(procs))
	for _, p := range procs {
		out = append(out, s.read(p))
	}
	return out, nil
}

func (s *Sampler) read(p procfs.Proc) Reading {
	r := Reading{Identity: Identity{PID: p.PID}}

	if name, err := p.Comm(); err == nil {
		r.Identity.Name = name
	} else {
		s.log.Debug("read comm", "pid", p.PID, "err", err)
	}

	// Kernel threads have an empty cmdline.
	if args, err := p.CmdLine(); err == nil {
		r.Identity.Cmdline = strings.Join(args, " ")
	} else {
		s.log.Debug("read cmdline", "pid", p.PID, "err", err)
	}

	stat, err := p.Stat()
	if err != nil {
		s.log.Warn("failed to get process time", "pid", p.PID, "err", err)
		r.Err = err
		return r
	}
	if r.Identity.Name == "" {
		r.Identity.Name = stat.Comm
	}

	r.Ticks = uint64(stat.UTime) + uint64(stat.STime)
	s.log.Debug("process ticks", "pid", p.PID, "user", stat.UTime, "kernel", stat.STime)
	return r
}
