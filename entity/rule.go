package entity

import "github.com/joeycumines/go-signalrt/sig"

// StateID identifies a state within an entity's state table. 0 is
// reserved to mean "stay" in a Rule's NextState field and "no parent"
// in a StateDef's ParentID field.
type StateID uint16

// Action is the function a Rule invokes when it matches. It receives
// the entity and the (possibly middleware-transformed) signal that
// matched, and returns a next-state override: 0 means "no override,
// use the rule's NextState", non-zero requests a transition to that
// state id. It is a plain Go func value rather than a tagged union,
// the same way a scheduled unit of work elsewhere in this module is
// just a bare func().
type Action func(e *Entity, s *sig.Signal) StateID

// Rule is the static triple {signal_id, next_state, action}. A Rule
// with a zero Action is legal: the transition still occurs, just
// without a side effect.
type Rule struct {
	SignalID  sig.ID
	NextState StateID
	Action    Action
}

// Matches reports whether the rule handles the given signal id.
func (r Rule) Matches(id sig.ID) bool {
	return r.SignalID == id
}
