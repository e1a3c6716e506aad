package dashboard

import "sync"

// ChartRegistry holds the most recent snapshot. A refresh that finishes after
// a newer one has been published is discarded.
type ChartRegistry struct {
	mu      sync.RWMutex
	current Snapshot
	set     bool
}

// Publish stores s unless a snapshot of the same or a later generation is
// already held. It reports whether s was accepted.
func (r *ChartRegistry) Publish(s Snapshot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.set && s.Generation <= r.current.Generation {
		return false
	}
	r.current = s
	r.set = true
	return true
}

// Current returns the latest published snapshot, if any.
func (r *ChartRegistry) Current() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.set
}
