// Package dispatch implements the single-signal dispatch pipeline and
// the emission APIs that feed it: Emit, EmitFromISR, EmitByID, and
// Broadcast.
package dispatch

import (
	"github.com/joeycumines/go-signalrt/clock"
	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/registry"
	"github.com/joeycumines/go-signalrt/rterr"
	"github.com/joeycumines/go-signalrt/sig"
)

// Stamp sets s.Timestamp from clk if target has timestamps enabled,
// and leaves it at 0 otherwise: timestamping happens at emission time
// if enabled in config, not at dispatch time.
func stamp(target *entity.Entity, clk clock.Clock, s *sig.Signal) {
	if target.TimestampsEnabled() && clk != nil {
		s.Timestamp = clk.NowMS()
	} else {
		s.Timestamp = 0
	}
}

// Emit copies s into target's inbox, selecting the ISR-safe push path
// when clk.InISR() reports true or the clock.ForceISR override is set,
// and the task-context path otherwise. Callers that already
// know their context should prefer the explicit EmitTask/EmitFromISR
// below instead.
//
// Emit does not run middleware or rules; it only enqueues.
func Emit(target *entity.Entity, clk clock.Clock, s sig.Signal) error {
	if clock.ForcedISR() || (clk != nil && clk.InISR()) {
		return EmitFromISR(target, clk, s)
	}
	return EmitTask(target, clk, s)
}

// EmitTask is the explicit task-context emission path.
func EmitTask(target *entity.Entity, clk clock.Clock, s sig.Signal) error {
	if target == nil {
		return rterr.ErrInvalidArg
	}
	stamp(target, clk, &s)
	if err := target.Inbox.TryPush(s); err != nil {
		return err
	}
	return nil
}

// EmitFromISR is the explicit ISR-context emission path: non-blocking,
// safe to call from an interrupt handler.
func EmitFromISR(target *entity.Entity, clk clock.Clock, s sig.Signal) error {
	if target == nil {
		return rterr.ErrInvalidArg
	}
	stamp(target, clk, &s)
	return target.Inbox.PushISR(s)
}

// EmitByID performs a registry lookup and emits to the result.
// Returns ErrNotFound if id is unregistered.
func EmitByID(reg *registry.Registry, clk clock.Clock, id entity.ID, s sig.Signal) error {
	target := reg.Get(id)
	if target == nil {
		return rterr.ErrNotFound
	}
	return Emit(target, clk, s)
}

// Broadcast iterates all registered entities and enqueues a copy of s
// into each. It returns the number of entities a copy was actually
// delivered to; a failed push (e.g. a full inbox) counts as a drop,
// not an error. Broadcast is O(N); callers should prefer the topic bus
// for anything but small, infrequent fan-out.
func Broadcast(reg *registry.Registry, clk clock.Clock, s sig.Signal) int {
	delivered := 0
	reg.Each(func(e *entity.Entity) bool {
		if Emit(e, clk, s) == nil {
			delivered++
		}
		return true
	})
	return delivered
}
