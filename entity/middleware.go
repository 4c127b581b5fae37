package entity

import "github.com/joeycumines/go-signalrt/sig"

// Verdict is a middleware's disposition for one signal.
type Verdict int

const (
	// Continue lets the signal proceed to rule matching unchanged.
	Continue Verdict = iota
	// Handled stops the pipeline with no rule matching; the signal is
	// considered processed.
	Handled
	// Filtered drops the signal entirely; statistics are the caller's
	// responsibility to track.
	Filtered
	// Transform indicates the signal value was mutated in place;
	// processing continues with the mutated value.
	Transform
)

func (v Verdict) String() string {
	switch v {
	case Continue:
		return "Continue"
	case Handled:
		return "Handled"
	case Filtered:
		return "Filtered"
	case Transform:
		return "Transform"
	default:
		return "Unknown"
	}
}

// MiddlewareFunc is the signature every middleware implements:
// (entity, &mut signal, ctx) -> verdict. It may mutate s in place; the
// dispatcher re-reads s.ID after each call to pick up any Transform.
type MiddlewareFunc func(e *Entity, s *sig.Signal, ctx any) Verdict

// MiddlewareSlot is one entry in an entity's fixed-size middleware
// array.
type MiddlewareSlot struct {
	Fn       MiddlewareFunc
	Ctx      any
	Priority uint8
	Enabled  bool

	inUse bool
}
