package metrics

import (
	"sync"
	"time"
)

// Registry accumulates refresh-cycle counters. Counters only ever grow; the
// rendered /metrics output derives everything else from them plus the live
// snapshot. Safe for concurrent use.
type Registry struct {
	mu                 sync.Mutex
	cycles             uint64
	failures           uint64
	fallbacks          uint64
	staleSubstitutions uint64
	discoveries        uint64
	wakeups            uint64
	lastDuration       time.Duration
	lastFinished       time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// CycleFinished records one completed refresh cycle.
func (r *Registry) CycleFinished(d time.Duration, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycles++
	if failed {
		r.failures++
	}
	r.lastDuration = d
	r.lastFinished = time.Now()
}

// FallbackServed records a cycle answered with the previous snapshot.
func (r *Registry) FallbackServed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks++
}

// StaleSubstituted records readings replaced by the stale-value guard.
func (r *Registry) StaleSubstituted(n int) {
	if n <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staleSubstitutions += uint64(n)
}

// DiscoveryRan records one series-name discovery round trip.
func (r *Registry) DiscoveryRan() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discoveries++
}

// WakeupFired records one precise-transition wakeup.
func (r *Registry) WakeupFired() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wakeups++
}

// Counters is a point-in-time copy of the registry, for rendering and tests.
type Counters struct {
	Cycles             uint64
	Failures           uint64
	Fallbacks          uint64
	StaleSubstitutions uint64
	Discoveries        uint64
	Wakeups            uint64
	LastDuration       time.Duration
	LastFinished       time.Time
}

// Counters returns a copy of the current counter values.
func (r *Registry) Counters() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Counters{
		Cycles:             r.cycles,
		Failures:           r.failures,
		Fallbacks:          r.fallbacks,
		StaleSubstitutions: r.staleSubstitutions,
		Discoveries:        r.discoveries,
		Wakeups:            r.wakeups,
		LastDuration:       r.lastDuration,
		LastFinished:       r.lastFinished,
	}
}
