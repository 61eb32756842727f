// Package registry holds the shared map from target address to accumulated
// findings. The registry is owned by the host framework; the orchestrator
// only references it.
package registry

import (
	"sort"
	"sync"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
	"github.com/redeyesdontcry/redeyes-go/internal/ports"
)

// Registry implements ports.TargetRegistry. The map lock covers only
// insert/lookup; per-field mutation happens inside each Target under its own
// lock, so concurrent command completions for the same target stay safe
// without cross-field locking.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]*domain.Target
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{targets: make(map[string]*domain.Target)}
}

// Ensure returns the target for addr, creating it on first discovery.
func (r *Registry) Ensure(addr string) *domain.Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	if target, ok := r.targets[addr]; ok {
		return target
	}
	target := domain.NewTarget(addr)
	r.targets[addr] = target
	return target
}

// Get looks up a target without creating it.
func (r *Registry) Get(addr string) (*domain.Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	target, ok := r.targets[addr]
	return target, ok
}

// Addrs returns all target addresses in stable sorted order.
func (r *Registry) Addrs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	addrs := make([]string, 0, len(r.targets))
	for addr := range r.targets {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

// Len returns the number of known targets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets)
}

var _ ports.TargetRegistry = (*Registry)(nil)
