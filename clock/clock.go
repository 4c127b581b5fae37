// Package clock supplies the host-environment capabilities the core
// assumes rather than implements: a monotonic millisecond clock that
// wraps at approximately 49 days (uint32 milliseconds), and a probe for
// "currently in interrupt context". Wrap-safe comparisons are provided
// since a plain ">" on wrapped uint32 values is wrong near the
// wraparound boundary.
package clock

import (
	"sync/atomic"
	"time"
)

// Clock is the monotonic millisecond source plus ISR-context probe the
// core's run loop and dispatcher depend on. A production host wires
// this to a hardware tick counter and interrupt-mask register; System
// wires it to the Go runtime's monotonic clock for everything else
// (tests, simulation, non-embedded hosts).
type Clock interface {
	// NowMS returns milliseconds since an arbitrary epoch, wrapping at
	// 2^32. It must be monotonic modulo that wrap.
	NowMS() uint32

	// InISR reports whether the calling goroutine is executing in
	// interrupt context. On hosted Go there is no such context by
	// default; System always returns false, and callers that simulate
	// ISR semantics supply a Clock whose InISR returns true or set the
	// process-wide override with ForceISR.
	InISR() bool
}

// System is the default Clock, backed by time.Now()'s monotonic
// reading. The zero value is ready to use.
type System struct {
	start time.Time
}

// NewSystem returns a ready-to-use System clock, anchored at the
// current instant the same way eventloop.Loop anchors its tickAnchor:
// once, at construction, never touched again.
func NewSystem() *System {
	return &System{start: time.Now()}
}

// NowMS implements Clock.
func (s *System) NowMS() uint32 {
	if s.start.IsZero() {
		s.start = time.Now()
	}
	return uint32(time.Since(s.start).Milliseconds())
}

// InISR implements Clock. Always false on a hosted Go process.
func (s *System) InISR() bool {
	return false
}

// Before reports whether a happened strictly before b, accounting for
// uint32 wraparound: the comparison treats the half-range around the
// smaller value as "before" and the other half as "after", which is
// correct as long as no two compared timestamps are more than 2^31 ms
// apart (about 24 days) — the same assumption any wrapping monotonic
// clock comparison makes.
func Before(a, b uint32) bool {
	return int32(a-b) < 0
}

// BeforeOrEqual reports whether a happened at or before b, wrap-safe.
func BeforeOrEqual(a, b uint32) bool {
	return a == b || Before(a, b)
}

// Sub returns a-b as a signed millisecond duration, wrap-safe, for the
// common "how much longer until flow_wait_until" computation.
func Sub(a, b uint32) int32 {
	return int32(a - b)
}

// isrOverride is a process-wide override used by tests and by callers
// that want to force the ISR-safe code path without a real interrupt
// context present. It is independent of any particular Clock
// implementation, so dispatch.Emit consults it even when called with a
// nil Clock.
var isrOverride atomic.Bool

// ForceISR sets or clears the process-wide ISR override.
func ForceISR(v bool) {
	isrOverride.Store(v)
}

// ForcedISR reports the current override value.
func ForcedISR() bool {
	return isrOverride.Load()
}
