package dispatch

import (
	"time"

	"github.com/joeycumines/go-signalrt/clock"
	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/rterr"
	"github.com/joeycumines/go-signalrt/sig"
)

// Hook is the per-dispatch "black-box" observation callback:
// (entity_id, signal_id, src_id, state, timestamp), invoked once per
// processed signal, after the pipeline completes.
type Hook func(entityID entity.ID, signalID sig.ID, srcID uint16, state entity.StateID, timestamp uint32)

// Dispatcher runs the dispatch pipeline for a set of entities sharing
// one clock and one optional observation hook. It holds no per-entity
// state of its own — an Entity's mutable fields are owned by whichever
// goroutine calls Dispatch for it — so a Dispatcher value
// is safe to share across goroutines as long as no two goroutines
// dispatch the same entity concurrently.
type Dispatcher struct {
	Clock clock.Clock
	Hook  Hook
}

// New constructs a Dispatcher using clk (nil disables timestamping and
// always reports task context).
func New(clk clock.Clock) *Dispatcher {
	return &Dispatcher{Clock: clk}
}

// Dispatch pops one signal from e's inbox, waiting up to timeout, then
// runs the full pipeline on it. Returns ErrTimeout if no
// signal arrived within the wait, ErrInvalidArg if e is inactive or
// suspended.
func (d *Dispatcher) Dispatch(e *entity.Entity, timeout time.Duration) error {
	if e == nil {
		return rterr.ErrInvalidArg
	}
	if !e.Active() || e.Suspended() {
		return rterr.ErrInvalidArg
	}

	s, ok := e.Inbox.Pop(timeout)
	if !ok {
		return rterr.ErrTimeout
	}

	d.run(e, s)
	return nil
}

// DispatchAll drains e's inbox non-blockingly, running the pipeline on
// each pending signal, and returns the count processed. It stops as
// soon as the inbox is empty or the entity becomes invalid to
// dispatch.
func (d *Dispatcher) DispatchAll(e *entity.Entity) int {
	count := 0
	for {
		if err := d.Dispatch(e, 0); err != nil {
			return count
		}
		count++
	}
}

// run executes the pipeline on one already-popped signal: middleware,
// rule lookup, action, transition.
func (d *Dispatcher) run(e *entity.Entity, s sig.Signal) {
	if verdict := d.runMiddleware(e, &s); verdict == entity.Handled || verdict == entity.Filtered {
		d.observe(e, s)
		return
	}

	rule, found := resolveRule(e, s.ID)
	if !found {
		// No matching rule: the signal is silently dropped.
		d.observe(e, s)
		return
	}

	var actionNext entity.StateID
	if rule.Action != nil {
		actionNext = rule.Action(e, &s)
	}

	next := resolveNextState(e, actionNext, rule.NextState)
	d.transition(e, next)
	d.observe(e, s)
}

// runMiddleware iterates e's middleware slots in ascending priority,
// skipping disabled ones, mutating s in place on Transform and
// re-reading s.ID afterward.
func (d *Dispatcher) runMiddleware(e *entity.Entity, s *sig.Signal) entity.Verdict {
	for _, slot := range e.MiddlewareSlots() {
		if !slot.Enabled {
			continue
		}
		switch slot.Fn(e, s, slot.Ctx) {
		case entity.Handled:
			return entity.Handled
		case entity.Filtered:
			return entity.Filtered
		case entity.Transform, entity.Continue:
			// Continue; s.ID is re-read by resolveRule's caller on the
			// next iteration/rule lookup, since s was passed by
			// pointer and rule lookup always reads from s directly.
		}
	}
	return entity.Continue
}

// resolveRule walks, in order: current state's rules, then every
// attached mixin's rules in ascending priority, then (if
// HSM is enabled and the current state has a parent) the parent
// chain's rules — first match wins. The search walks rule tables only;
// it does not revisit mixins at each HSM level.
func resolveRule(e *entity.Entity, id sig.ID) (entity.Rule, bool) {
	states := e.States()

	if sd := states.Get(e.CurrentState()); sd != nil {
		if r, ok := matchRules(sd.Rules, id); ok {
			return r, true
		}
	}

	for _, m := range e.Mixins() {
		if r, ok := matchRules(m.Rules, id); ok {
			return r, true
		}
	}

	if e.HSMEnabled() {
		cur := states.Get(e.CurrentState())
		depth := 0
		for cur != nil && cur.ParentID != 0 {
			parent := states.Get(cur.ParentID)
			if parent == nil {
				break
			}
			if r, ok := matchRules(parent.Rules, id); ok {
				return r, true
			}
			depth++
			if depth > hsmDepthBound {
				// Depth bound exceeded: stop traversal and treat as no match.
				break
			}
			cur = parent
		}
	}

	return entity.Rule{}, false
}

// hsmDepthBound caps HSM parent-chain traversal at a depth large
// enough for any realistic hierarchy.
const hsmDepthBound = 64

func matchRules(rules []entity.Rule, id sig.ID) (entity.Rule, bool) {
	for _, r := range rules {
		if r.Matches(id) {
			return r, true
		}
	}
	return entity.Rule{}, false
}

// resolveNextState implements the effective-next-state precedence:
// the action's non-zero return wins over the rule's NextState; if both
// are zero, the effective next state is "stay",
// which always means the current (child) state, never a parent that a
// matching rule happened to live on.
func resolveNextState(e *entity.Entity, actionNext, ruleNext entity.StateID) entity.StateID {
	if actionNext != 0 {
		return actionNext
	}
	if ruleNext != 0 {
		return ruleNext
	}
	return e.CurrentState()
}

// transition applies a next-state decision: if it differs from the
// current state, on_exit(old) fires, current_state is stored, then
// on_entry(new) fires. Entry/exit receive a synthesized signal (id
// SYS_EXIT / SYS_ENTRY, src_id 0) and their return values are ignored
// — they cannot initiate a further transition within the same dispatch
// step.
func (d *Dispatcher) transition(e *entity.Entity, next entity.StateID) {
	old := e.CurrentState()
	if next == old {
		return
	}

	if next != 0 && e.States().Get(next) == nil {
		// Action returned/rule named a state id absent from the table:
		// undefined at the engine; debug builds assert, release
		// (no hook installed) treats it as "stay".
		e.Assert("dispatch: action returned unknown state id")
		return
	}

	if sd := e.States().Get(old); sd != nil && sd.OnExit != nil {
		exitSig := sig.New(sig.SysExit, 0)
		sd.OnExit(e, &exitSig)
	}

	e.StoreState(next)

	if sd := e.States().Get(next); sd != nil && sd.OnEntry != nil {
		entrySig := sig.New(sig.SysEntry, 0)
		sd.OnEntry(e, &entrySig)
	}
}

func (d *Dispatcher) observe(e *entity.Entity, s sig.Signal) {
	if d.Hook != nil {
		d.Hook(e.ID, s.ID, s.SrcID, e.CurrentState(), s.Timestamp)
	}
}

// Start enters initial_state and delivers SYS_INIT then SYS_ENTRY,
// then marks the entity active. Start is a
// no-op (returns ErrInvalidState) if the entity is already active.
func Start(e *entity.Entity) error {
	if e.Active() {
		return rterr.ErrInvalidState
	}
	e.MarkActive()
	e.StoreState(e.InitialState())

	initSig := sig.New(sig.SysInit, 0)
	if sd := e.States().Get(e.CurrentState()); sd != nil {
		if r, ok := matchRules(sd.Rules, sig.SysInit); ok && r.Action != nil {
			r.Action(e, &initSig)
		}
	}

	if sd := e.States().Get(e.CurrentState()); sd != nil && sd.OnEntry != nil {
		entrySig := sig.New(sig.SysEntry, 0)
		sd.OnEntry(e, &entrySig)
	}
	return nil
}

// Stop fires the current state's on_exit and marks the entity
// inactive.
func Stop(e *entity.Entity) error {
	if !e.Active() {
		return rterr.ErrInvalidState
	}
	if sd := e.States().Get(e.CurrentState()); sd != nil && sd.OnExit != nil {
		exitSig := sig.New(sig.SysExit, 0)
		sd.OnExit(e, &exitSig)
	}
	e.MarkStopped()
	return nil
}

// GetState returns e's current state id.
func GetState(e *entity.Entity) entity.StateID {
	return e.CurrentState()
}

// SetState forces e into state s without rule matching, but still
// fires exit/entry: it bypasses rule lookup but still runs on_exit
// then on_entry. Calling it twice with the same target fires
// exit+entry exactly once per call — twice total across the two calls,
// once each.
func SetState(e *entity.Entity, s entity.StateID) error {
	if e.States().Get(s) == nil {
		return rterr.ErrInvalidArg
	}
	d := &Dispatcher{}
	d.forceTransition(e, s)
	return nil
}

// forceTransition is like transition but always fires exit/entry, even
// when next == old, so that set_state(x); set_state(x) fires exit+entry
// exactly once per call.
func (d *Dispatcher) forceTransition(e *entity.Entity, next entity.StateID) {
	old := e.CurrentState()
	if sd := e.States().Get(old); sd != nil && sd.OnExit != nil {
		exitSig := sig.New(sig.SysExit, 0)
		sd.OnExit(e, &exitSig)
	}
	e.StoreState(next)
	if sd := e.States().Get(next); sd != nil && sd.OnEntry != nil {
		entrySig := sig.New(sig.SysEntry, 0)
		sd.OnEntry(e, &entrySig)
	}
}

// InState reports whether s equals e's current state or is an HSM
// ancestor of it.
func InState(e *entity.Entity, s entity.StateID) bool {
	return e.InState(s)
}
