// Package flow implements the coroutine ("uFlow") operators: the
// await/yield primitives an action function uses to express linear,
// time-sequenced behavior while remaining a plain function that
// returns promptly on every call.
//
// A native microcontroller implementation would lean on an implicit
// switch-jump over source line numbers, a C-specific trick. This
// port keeps the observable contract — resume point, wait condition,
// return-to-dispatcher — but realizes it as an explicit step counter
// compared against the entity's saved flow_line, in the same spirit as
// a Go protothread port: every operator in a flow body must run
// unconditionally, in the same order, on every call, so the Nth
// operator called always corresponds to the same step number.
package flow

import (
	"github.com/joeycumines/go-signalrt/clock"
	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/sig"
)

type position int

const (
	past position = iota
	here
	future
)

// Flow tracks one action invocation's progress through its own
// sequence of await points. It is cheap to construct (no allocation
// beyond itself) and is meant to be created fresh, via Begin, at the
// top of every invocation of a coroutine-hosting action.
type Flow struct {
	e        *entity.Entity
	step     uint16
	resumeAt uint16
}

// Begin marks e as flow-running and snapshots its saved resume point.
// Call it once, at the top of an action function that hosts a
// coroutine, before any operator calls.
func Begin(e *entity.Entity) *Flow {
	e.SetFlowRunning(true)
	return &Flow{e: e, resumeAt: e.FlowLine}
}

// reached advances the step counter and classifies this call site
// relative to the saved resume point: past (already executed and
// confirmed complete in an earlier invocation, so the body should act
// as a no-op and keep going), here (the exact point execution paused
// at), or future (never reached before).
func (f *Flow) reached() position {
	f.step++
	switch {
	case f.step < f.resumeAt:
		return past
	case f.step == f.resumeAt:
		return here
	default:
		return future
	}
}

// park saves the current step as the entity's resume point.
func (f *Flow) park() {
	f.e.FlowLine = f.step
}

// End clears coroutine state and reports "stay" (the sentinel 0):
// clears flow_line and flow_running, then returns "stay" from the action.
func (f *Flow) End() entity.StateID {
	f.e.FlowLine = 0
	f.e.FlowWaitSig = entity.SigNone
	f.e.FlowWaitUntil = 0
	f.e.SetFlowRunning(false)
	return 0
}

// Goto clears coroutine state and returns state as the next state,
// overriding whatever the enclosing rule's NextState is.
func (f *Flow) Goto(state entity.StateID) entity.StateID {
	f.e.FlowLine = 0
	f.e.FlowWaitSig = entity.SigNone
	f.e.FlowWaitUntil = 0
	f.e.SetFlowRunning(false)
	return state
}

// Reset rewinds the entity's resume point to the top and clears the
// flow-running flag without changing its current state, so the next
// entry restarts the flow body from the beginning.
func (f *Flow) Reset() {
	f.e.FlowLine = 0
	f.e.FlowWaitSig = entity.SigNone
	f.e.FlowWaitUntil = 0
	f.e.SetFlowRunning(false)
}

// Yield pauses for exactly one dispatch: the first time execution
// reaches this call it parks and reports true (the action should
// return 0 immediately); the very next time this call site is
// reached, it proceeds without parking again.
func (f *Flow) Yield() bool {
	switch f.reached() {
	case past, here:
		return false
	default:
		f.park()
		return true
	}
}

// AwaitSignal blocks until a signal with the given id is delivered to
// this action. s is the signal currently being dispatched. Reports
// true (action should return 0) while still waiting.
func (f *Flow) AwaitSignal(s *sig.Signal, id sig.ID) bool {
	switch f.reached() {
	case past:
		return false
	case here:
		if s == nil || s.ID != id {
			f.park()
			return true
		}
		f.e.FlowWaitSig = entity.SigNone
		return false
	default:
		f.e.FlowWaitSig = id
		f.park()
		return true
	}
}

// AwaitAny is AwaitSignal generalized to a static list of acceptable
// ids. The entity's single flow_wait_sig field can only record one of
// them (set to the first) for introspection; the match itself always
// checks the full ids list passed here, which callers must pass
// identically on every invocation.
func (f *Flow) AwaitAny(s *sig.Signal, ids ...sig.ID) bool {
	switch f.reached() {
	case past:
		return false
	case here:
		if s == nil || !containsID(ids, s.ID) {
			f.park()
			return true
		}
		f.e.FlowWaitSig = entity.SigNone
		return false
	default:
		if len(ids) > 0 {
			f.e.FlowWaitSig = ids[0]
		}
		f.park()
		return true
	}
}

func containsID(ids []sig.ID, id sig.ID) bool {
	for _, want := range ids {
		if want == id {
			return true
		}
	}
	return false
}

// AwaitTime blocks until now is at or past a deadline ms milliseconds
// from the moment this call first parks. now is the dispatcher's
// current clock reading, taken with the same clock.Clock every
// invocation so wrap-safe comparison applies.
func (f *Flow) AwaitTime(now uint32, ms uint32) bool {
	switch f.reached() {
	case past:
		return false
	case here:
		if clock.Before(now, f.e.FlowWaitUntil) {
			f.park()
			return true
		}
		f.e.FlowWaitUntil = 0
		return false
	default:
		f.e.FlowWaitUntil = now + ms
		f.park()
		return true
	}
}

// AwaitCond blocks until pred returns true. pred is re-evaluated on
// every dispatch that reaches this call; it must be cheap and
// side-effect free, since it may run many times before it first
// returns true.
func (f *Flow) AwaitCond(pred func() bool) bool {
	switch f.reached() {
	case past:
		return false
	default:
		if pred() {
			return false
		}
		f.park()
		return true
	}
}
