// Package entity defines the per-entity control block: the static
// rule/state/mixin tables, the bounded inbox, the middleware array,
// coroutine bookkeeping, and the scratch buffer.
//
// Concurrency contract: an Entity's mutable state (inbox aside, which
// has its own internal synchronization) is owned by whichever
// goroutine is currently dispatching it. Two concurrent dispatches of
// the same entity are forbidden and not guarded against here —
// callers guarantee it by construction (one dispatcher goroutine per
// entity, or a single-threaded run loop).
package entity

import (
	"github.com/joeycumines/go-signalrt/rterr"
	"github.com/joeycumines/go-signalrt/sig"
)

// ID identifies an entity within a registry, 1..=MAX_ENTITIES.
type ID uint16

// Entity is the reactive unit: an FSM, an inbox, and a scratch buffer.
type Entity struct {
	ID   ID
	Name string

	flags flagWord

	states       *StateTable
	initialState StateID
	currentState StateID

	mixins     []mixinSlot
	middleware []MiddlewareSlot

	// Coroutine ("flow") fields.
	FlowLine      uint16
	FlowWaitSig   sig.ID
	FlowWaitUntil uint32 // 0 means "not waiting on time"

	Scratch []byte

	UserData any

	Inbox *Inbox

	opts Options
}

// SigNone is the sentinel FlowWaitSig value meaning "not awaiting a
// specific signal id": a nonzero value means the coroutine is blocked
// awaiting that specific id.
const SigNone sig.ID = 0

// New constructs an Entity bound to the given state table, starting in
// initialState. The entity is not yet started: current_state equals
// initialState but SYS_INIT/SYS_ENTRY have not been delivered until
// Start is called.
func New(id ID, name string, states *StateTable, initialState StateID, opts ...Option) *Entity {
	if states == nil {
		panic("entity: nil state table")
	}
	if !states.Has(initialState) {
		panic("entity: initial state not present in state table")
	}
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	e := &Entity{
		ID:           id,
		Name:         name,
		states:       states,
		initialState: initialState,
		currentState: initialState,
		mixins:       make([]mixinSlot, o.maxMixins),
		middleware:   make([]MiddlewareSlot, o.maxMiddleware),
		Scratch:      make([]byte, o.scratchSize),
		Inbox:        NewInbox(o.inboxSize),
		opts:         o,
	}
	return e
}

// States returns the entity's static state table.
func (e *Entity) States() *StateTable { return e.states }

// HSMEnabled reports whether HSM parent traversal is enabled for this
// entity (ENABLE_HSM).
func (e *Entity) HSMEnabled() bool { return e.opts.hsmEnabled }

// TimestampsEnabled reports whether emit should stamp signals
// (ENABLE_TIMESTAMPS).
func (e *Entity) TimestampsEnabled() bool { return e.opts.timestampsOn }

// Assert invokes the debug assertion hook if one was installed via
// WithAssertions; it is a no-op otherwise (release-build behavior).
func (e *Entity) Assert(message string) {
	if e.opts.assertionHook != nil {
		e.opts.assertionHook(Assertion{Entity: e, Message: message})
	}
}

// CurrentState returns the entity's current state id.
func (e *Entity) CurrentState() StateID { return e.currentState }

// InitialState returns the state the entity starts in.
func (e *Entity) InitialState() StateID { return e.initialState }

// StoreState stores the new state id directly, without firing
// entry/exit actions. It is exported for package dispatch's pipeline,
// which owns the "exit precedes store precedes entry" ordering
// invariant; nothing else should call this.
func (e *Entity) StoreState(s StateID) { e.currentState = s }

// Active reports the FlagActive bit.
func (e *Entity) Active() bool { return e.flags.has(FlagActive) }

// Suspended reports the FlagSuspended bit.
func (e *Entity) Suspended() bool { return e.flags.has(FlagSuspended) }

// FlowRunning reports the FlagFlowRunning bit.
func (e *Entity) FlowRunning() bool { return e.flags.has(FlagFlowRunning) }

// Supervised reports the FlagSupervised bit.
func (e *Entity) Supervised() bool { return e.flags.has(FlagSupervised) }

// Supervisor reports the FlagSupervisor bit.
func (e *Entity) Supervisor() bool { return e.flags.has(FlagSupervisor) }

// SetSupervised sets or clears FlagSupervised.
func (e *Entity) SetSupervised(v bool) {
	if v {
		e.flags.set(FlagSupervised)
	} else {
		e.flags.clear(FlagSupervised)
	}
}

// SetSupervisor sets or clears FlagSupervisor.
func (e *Entity) SetSupervisor(v bool) {
	if v {
		e.flags.set(FlagSupervisor)
	} else {
		e.flags.clear(FlagSupervisor)
	}
}

// MarkActive sets FlagActive; called once by dispatch.Start.
func (e *Entity) MarkActive() { e.flags.set(FlagActive) }

// MarkStopped clears FlagActive; called by dispatch.Stop.
func (e *Entity) MarkStopped() { e.flags.clear(FlagActive) }

// Suspend sets FlagSuspended.
func (e *Entity) Suspend() { e.flags.set(FlagSuspended) }

// Resume clears FlagSuspended.
func (e *Entity) Resume() { e.flags.clear(FlagSuspended) }

// SetFlowRunning sets or clears FlagFlowRunning, keeping it in sync
// with FlowLine.
func (e *Entity) SetFlowRunning(v bool) {
	if v {
		e.flags.set(FlagFlowRunning)
	} else {
		e.flags.clear(FlagFlowRunning)
	}
}

// --- Mixin attachment ---

// BindMixin attaches m to the entity in the first free slot, ordered
// by ascending priority for rule resolution. Returns
// ErrNoMemory if no slot is free.
func (e *Entity) BindMixin(m *Mixin) error {
	for i := range e.mixins {
		if !e.mixins[i].inUse {
			e.mixins[i] = mixinSlot{mixin: m, inUse: true}
			e.sortMixins()
			return nil
		}
	}
	return rterr.ErrNoMemory
}

// UnbindMixin detaches m. Returns ErrNotFound if m was not attached.
func (e *Entity) UnbindMixin(m *Mixin) error {
	for i := range e.mixins {
		if e.mixins[i].inUse && e.mixins[i].mixin == m {
			e.mixins[i] = mixinSlot{}
			e.sortMixins()
			return nil
		}
	}
	return rterr.ErrNotFound
}

// Mixins returns the attached mixins in ascending-priority order, for
// rule resolution.
func (e *Entity) Mixins() []*Mixin {
	out := make([]*Mixin, 0, len(e.mixins))
	for i := range e.mixins {
		if e.mixins[i].inUse {
			out = append(out, e.mixins[i].mixin)
		}
	}
	return out
}

func (e *Entity) sortMixins() {
	// Insertion sort: the mixin slot count is small (default 4) and
	// fixed, so this is O(1) in practice and allocates nothing — there is
	// no dynamic allocation on this hot path. Free slots sort last.
	for i := 1; i < len(e.mixins); i++ {
		for j := i; j > 0; j-- {
			a, b := e.mixins[j-1], e.mixins[j]
			if !b.inUse || (a.inUse && a.mixin.Priority <= b.mixin.Priority) {
				break
			}
			e.mixins[j-1], e.mixins[j] = b, a
		}
	}
}

// --- Middleware registration ---

// RegisterMiddleware installs fn in the first free slot, sorted by
// ascending priority, with registration order breaking ties. Returns
// ErrNoMemory if no slot is
// free.
func (e *Entity) RegisterMiddleware(fn MiddlewareFunc, ctx any, priority uint8) error {
	for i := range e.middleware {
		if !e.middleware[i].inUse {
			e.middleware[i] = MiddlewareSlot{Fn: fn, Ctx: ctx, Priority: priority, Enabled: true, inUse: true}
			e.sortMiddleware()
			return nil
		}
	}
	return rterr.ErrNoMemory
}

// UnregisterMiddleware removes the first slot, in priority order, whose
// Ctx equals ctx. Slots are matched on Ctx alone because func values
// are not comparable in Go; comparing a Ctx whose dynamic type is not
// comparable panics. Returns ErrNotFound if no slot matches.
func (e *Entity) UnregisterMiddleware(ctx any) error {
	for i := range e.middleware {
		if e.middleware[i].inUse && e.middleware[i].Ctx == ctx {
			e.middleware[i] = MiddlewareSlot{}
			e.sortMiddleware()
			return nil
		}
	}
	return rterr.ErrNotFound
}

// MiddlewareSlots returns the middleware slots in ascending-priority
// order, enabled or not (the dispatcher skips disabled slots itself).
func (e *Entity) MiddlewareSlots() []*MiddlewareSlot {
	out := make([]*MiddlewareSlot, 0, len(e.middleware))
	for i := range e.middleware {
		if e.middleware[i].inUse {
			out = append(out, &e.middleware[i])
		}
	}
	return out
}

func (e *Entity) sortMiddleware() {
	for i := 1; i < len(e.middleware); i++ {
		for j := i; j > 0; j-- {
			a, b := e.middleware[j-1], e.middleware[j]
			if !b.inUse || (a.inUse && a.Priority <= b.Priority) {
				break
			}
			e.middleware[j-1], e.middleware[j] = b, a
		}
	}
}

// InState reports whether s equals the current state or is an
// ancestor of it via ParentID chains. When HSM is disabled, this
// degrades to a direct equality check.
func (e *Entity) InState(s StateID) bool {
	if e.currentState == s {
		return true
	}
	if !e.opts.hsmEnabled {
		return false
	}
	cur := e.states.Get(e.currentState)
	depth := 0
	for cur != nil && cur.ParentID != 0 {
		if cur.ParentID == s {
			return true
		}
		depth++
		if depth > maxParentDepth {
			return false
		}
		cur = e.states.Get(cur.ParentID)
	}
	return false
}

// maxParentDepth bounds HSM parent-chain traversal to guarantee
// termination. A fixed generous bound is used here since Go's state
// tables are not fixed-size arrays sized by a compile-time constant;
// 64 is far beyond any realistic HSM depth.
const maxParentDepth = 64
