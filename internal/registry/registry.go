package registry

import "sync"

// Registry maps shell names to their remembered height ratios. Entries are
// created lazily on first reference and never removed while the daemon runs.
// Ratios always stay inside (0, 1).
type Registry struct {
	mu           sync.Mutex
	defaultRatio float64
	ratios       map[string]float64
}

// New creates a registry seeding unseen shells with defaultRatio.
func New(defaultRatio float64) *Registry {
	return &Registry{
		defaultRatio: defaultRatio,
		ratios:       make(map[string]float64),
	}
}

// Ratio returns the remembered ratio for shell, creating the entry with the
// default ratio on first access.
func (r *Registry) Ratio(shell string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ratio, ok := r.ratios[shell]
	if !ok {
		ratio = r.defaultRatio
		r.ratios[shell] = ratio
	}
	return ratio
}

// UpdateRatio overwrites the remembered ratio for shell. Values outside
// (0, 1) are ignored to keep the registry invariant intact.
func (r *Registry) UpdateRatio(shell string, ratio float64) {
	if ratio <= 0 || ratio >= 1 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ratios[shell] = ratio
}
