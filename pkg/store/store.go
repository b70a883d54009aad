// Package store holds the latest CPU time and energy per process identity.
//
// The store is a live snapshot, not a time series: every Upsert replaces the
// previous value. Entries are never removed, so identities of processes that
// have exited stay visible with their last-known values and the map grows
// for the lifetime of the exporter.
package store

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ja7ad/energy-exporter/pkg/system/proc"
	"github.com/ja7ad/energy-exporter/pkg/types"
)

// Sample is the latest absolute value stored for one identity.
type Sample struct {
	CPUSeconds types.Seconds
	Energy     types.WattHours
}

// Entry pairs an identity with its sample in a Snapshot.
type Entry struct {
	Identity proc.Identity
	Sample   Sample
}

type entry struct {
	cpu    atomic.Uint64
	energy atomic.Uint64
}

func (e *entry) load() Sample {
	return Sample{
		CPUSeconds: types.Seconds(e.cpu.Load()),
		Energy:     types.WattHours(e.energy.Load()),
	}
}

// Store maps proc.Identity to Sample.
//
// It is built for one writer and many concurrent readers. The mutex only
// guards the map structure; field values are atomics, so a reader never sees
// a torn field, but cpu and energy of one entry may come from different
// writes if a read races an Upsert.
type Store struct {
	mu      sync.RWMutex
	entries map[proc.Identity]*entry
}

func New() *Store {
	return &Store{entries: make(map[proc.Identity]*entry)}
}

// Upsert overwrites the sample for id, creating a zero entry first if id is new.
func (s *Store) Upsert(id proc.Identity, cpu types.Seconds, energy types.WattHours) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		s.mu.Lock()
		if e, ok = s.entries[id]; !ok {
			e = &entry{}
			s.entries[id] = e
		}
		s.mu.Unlock()
	}

	e.cpu.Store(uint64(cpu))
	e.energy.Store(uint64(energy))
}

// Get returns the current sample for id.
func (s *Store) Get(id proc.Identity) (Sample, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return Sample{}, false
	}
	return e.load(), true
}

// Len returns the number of identities ever stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a point-in-time copy of every entry, ordered by pid then
// name then cmdline. The read lock is held only while copying; callers
// serialize the returned slice without holding anything.
func (s *Store) Snapshot() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for id, e := range s.entries {
		out = append(out, Entry{Identity: id, Sample: e.load()})
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Entry) int {
		return cmp.Or(
			cmp.Compare(a.Identity.PID, b.Identity.PID),
			cmp.Compare(a.Identity.Name, b.Identity.Name),
			cmp.Compare(a.Identity.Cmdline, b.Identity.Cmdline),
		)
	})
	return out
}
