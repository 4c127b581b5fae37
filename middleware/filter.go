package middleware

import (
	"sync"

	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/sig"
)

// Filter is a simpler companion to ACL: a plain allow-list or
// deny-list over signal ids only (no src_id dimension), useful where a
// middleware only needs to gate which signal kinds reach an entity at
// all.
type Filter struct {
	mu      sync.RWMutex
	ids     map[sig.ID]struct{}
	allowed bool // true: ids is an allow-list; false: ids is a deny-list
}

// NewAllowList constructs a Filter that only lets the given ids
// through.
func NewAllowList(ids ...sig.ID) *Filter {
	return newFilter(true, ids)
}

// NewDenyList constructs a Filter that lets everything through except
// the given ids.
func NewDenyList(ids ...sig.ID) *Filter {
	return newFilter(false, ids)
}

func newFilter(allowed bool, ids []sig.ID) *Filter {
	f := &Filter{ids: make(map[sig.ID]struct{}, len(ids)), allowed: allowed}
	for _, id := range ids {
		f.ids[id] = struct{}{}
	}
	return f
}

// Middleware returns the entity.MiddlewareFunc to register.
func (f *Filter) Middleware() entity.MiddlewareFunc {
	return func(e *entity.Entity, s *sig.Signal, ctx any) entity.Verdict {
		f.mu.RLock()
		_, listed := f.ids[s.ID]
		allowed := f.allowed
		f.mu.RUnlock()

		pass := listed == allowed
		if !pass {
			return entity.Filtered
		}
		return entity.Continue
	}
}
