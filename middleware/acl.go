// Package middleware provides collaborator middleware built on the
// dispatch pipeline's (entity, &signal, ctx) -> Verdict interface:
// access control, debouncing, tracing, and (in bridge.WormholeTX)
// off-chip routing.
package middleware

import (
	"sync"

	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/sig"
)

// aclKey is the (source, topic) pair an ACL admits or denies.
type aclKey struct {
	srcID    uint16
	signalID sig.ID
}

// ACL admits or denies a signal by (src_id, signal.id) pair against a
// static table. The zero value denies everything;
// use NewACL with an explicit default.
type ACL struct {
	mu       sync.RWMutex
	allow    map[aclKey]bool
	defAllow bool
	admitted uint64
	denied   uint64
}

// NewACL constructs an ACL whose default verdict for unlisted pairs is
// defaultAllow.
func NewACL(defaultAllow bool) *ACL {
	return &ACL{allow: make(map[aclKey]bool), defAllow: defaultAllow}
}

// Allow adds an explicit allow entry for (srcID, signalID).
func (a *ACL) Allow(srcID uint16, signalID sig.ID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.allow[aclKey{srcID, signalID}] = true
}

// Deny adds an explicit deny entry for (srcID, signalID), overriding
// the default and any prior Allow for the same pair.
func (a *ACL) Deny(srcID uint16, signalID sig.ID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.allow[aclKey{srcID, signalID}] = false
}

// Middleware returns the entity.MiddlewareFunc to register.
func (a *ACL) Middleware() entity.MiddlewareFunc {
	return func(e *entity.Entity, s *sig.Signal, ctx any) entity.Verdict {
		a.mu.RLock()
		verdict, explicit := a.allow[aclKey{s.SrcID, s.ID}]
		defAllow := a.defAllow
		a.mu.RUnlock()

		permitted := defAllow
		if explicit {
			permitted = verdict
		}

		a.mu.Lock()
		if permitted {
			a.admitted++
		} else {
			a.denied++
		}
		a.mu.Unlock()

		if !permitted {
			return entity.Filtered
		}
		return entity.Continue
	}
}

// Stats returns the running admitted/denied counters.
func (a *ACL) Stats() (admitted, denied uint64) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.admitted, a.denied
}
