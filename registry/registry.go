// Package registry provides the id-to-entity lookup: a sparse mapping
// supporting emit-by-id and broadcast. It is a plain RWMutex-guarded
// map rather than a weak-pointer/scavenger-based registry, since
// entities here are caller-owned for their full lifetime and never
// garbage collected out from under it.
package registry

import (
	"sort"
	"sync"

	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/rterr"
)

// Registry is a shared-mutable id -> *entity.Entity map. It requires
// internal synchronization because, unlike a single entity's own
// state, it may be mutated from outside the dispatcher goroutine.
type Registry struct {
	mu   sync.RWMutex
	byID map[entity.ID]*entity.Entity
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{byID: make(map[entity.ID]*entity.Entity)}
}

// Register assigns e to its declared ID slot. Returns ErrAlreadyExists
// if that slot is occupied, ErrInvalidArg if e is nil.
func (r *Registry) Register(e *entity.Entity) error {
	if e == nil {
		return rterr.ErrInvalidArg
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[e.ID]; exists {
		return rterr.ErrAlreadyExists
	}
	r.byID[e.ID] = e
	return nil
}

// Unregister clears e's slot. It is not an error to unregister an id
// that was never registered.
func (r *Registry) Unregister(id entity.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

// Get returns the entity registered for id, or nil if none.
func (r *Registry) Get(id entity.ID) *entity.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Each visits every registered entity in ascending id order, stopping
// early if fn returns false, so broadcast iteration is deterministic.
func (r *Registry) Each(fn func(*entity.Entity) bool) {
	r.mu.RLock()
	ids := make([]entity.ID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	snapshot := make([]*entity.Entity, len(ids))
	for i, id := range ids {
		snapshot[i] = r.byID[id]
	}
	r.mu.RUnlock()

	for _, e := range snapshot {
		if !fn(e) {
			return
		}
	}
}

// IDs returns every registered entity id in ascending order.
func (r *Registry) IDs() []entity.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]entity.ID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
