// Package proc reads per-process CPU accounting from the Linux proc
// filesystem for the energy exporter.
//
// Overview
//
//   - ClockRate / ResolveClockRate:
//     sysconf(_SC_CLK_TCK) resolved once at startup; SecondsPerTick converts
//     the jiffy counters in /proc/<pid>/stat into seconds. CLK_TCK in the
//     environment overrides the queried value.
//
//   - Sampler:
//     Sample() ([]Reading, error)
//
//     Sample lists /proc and, for every pid, returns its Identity (pid,
//     comm, space-joined cmdline) and Ticks = utime + stime. Values are
//     cumulative since process start, not deltas.
//
// Failure isolation
//
// Reads are independent per pid. A process that vanishes between listing
// and reading, a permission error or a malformed stat line produces a
// Reading with Ticks == 0 and Err set, logged at warn level. The rest of the
// pass proceeds. Nothing is retried within a pass.
//
// Identity caveats
//
//   - comm is truncated by the kernel to 15 bytes.
//   - A pid reused by a process with the same comm and cmdline is
//     indistinguishable from the earlier process.
//
// Testing guidance
//
//   - NewSampler accepts any mount point; tests build a fake tree in
//     t.TempDir() with <pid>/stat, <pid>/comm and <pid>/cmdline files.
//   - Tests against the real /proc should only assert on the current pid.
//
// Package import path: github.com/ja7ad/energy-exporter/pkg/system/proc
package proc
