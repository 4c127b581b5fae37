// Package rterr defines the error taxonomy surfaced by every package in
// go-signalrt, per the core's error handling design: emission and
// registration errors are returned to the caller unmodified, while
// outcomes internal to a dispatch cycle (unmatched rule, filtered
// signal) are not errors at all.
package rterr

import "errors"

// Sentinel errors. Callers should compare with errors.Is, not ==, since
// some packages wrap these with additional context.
var (
	// ErrInvalidArg is returned for a nil target, an inactive entity, or
	// any other caller-supplied argument that violates a precondition.
	ErrInvalidArg = errors.New("rterr: invalid argument")

	// ErrNoMemory is returned when a fixed-capacity table (an entity's
	// middleware slot array or mixin array) is full. The bus topic table
	// and subscriber lists have no capacity limit and never return it.
	ErrNoMemory = errors.New("rterr: no memory")

	// ErrQueueFull is returned when an entity's inbox is at capacity.
	// The signal is dropped; the inbox is not mutated.
	ErrQueueFull = errors.New("rterr: queue full")

	// ErrNotFound is returned when a lookup (registry id, subscription)
	// fails to find its target.
	ErrNotFound = errors.New("rterr: not found")

	// ErrInvalidState is returned when an operation is attempted against
	// an entity or table in a state that does not support it.
	ErrInvalidState = errors.New("rterr: invalid state")

	// ErrTimeout is returned by a blocking dispatch wait that elapsed
	// without a signal arriving.
	ErrTimeout = errors.New("rterr: timeout")

	// ErrAlreadyExists is returned when registering an entity id that is
	// already occupied.
	ErrAlreadyExists = errors.New("rterr: already exists")

	// ErrDisabled is returned by a collaborator that is compiled out or
	// configured off for the current platform (e.g. the wormhole bridge
	// on a non-Linux build).
	ErrDisabled = errors.New("rterr: disabled")
)
