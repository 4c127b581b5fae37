package entity

import (
	"sync"
	"time"

	"github.com/joeycumines/go-signalrt/rterr"
	"github.com/joeycumines/go-signalrt/sig"
)

// DefaultInboxSize is the default inbox capacity.
const DefaultInboxSize = 8

// Inbox is a bounded FIFO of pending signals, backed by a fixed-size
// array so pushing and popping never allocates — the ring-buffer index
// arithmetic is adapted from a power-of-2 ring buffer, simplified from
// a growable buffer to a fixed-capacity one since overflow here is
// lossy-refuse rather than growth.
//
// A full inbox causes lossy-refuse: TryPush returns ErrQueueFull and
// the signal is dropped, not overwritten.
type Inbox struct {
	mu   sync.Mutex
	cond *sync.Cond
	buf  []sig.Signal
	r, w int // monotonically increasing counts, mod len(buf) for indexing
}

// NewInbox constructs an Inbox with the given fixed capacity. A
// non-positive capacity uses DefaultInboxSize.
func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = DefaultInboxSize
	}
	ib := &Inbox{buf: make([]sig.Signal, capacity)}
	ib.cond = sync.NewCond(&ib.mu)
	return ib
}

// Cap returns the inbox's fixed capacity.
func (ib *Inbox) Cap() int {
	return len(ib.buf)
}

// Len returns the number of currently queued signals.
func (ib *Inbox) Len() int {
	ib.mu.Lock()
	defer ib.mu.Unlock()
	return ib.w - ib.r
}

// TryPush attempts a non-blocking enqueue, for task-context callers.
// Returns ErrQueueFull if the inbox is at capacity; the inbox is left
// unmutated in that case.
func (ib *Inbox) TryPush(s sig.Signal) error {
	ib.mu.Lock()
	defer ib.mu.Unlock()
	return ib.pushLocked(s)
}

// PushISR is the ISR-safe variant: non-blocking, identical semantics
// to TryPush. In a hosted Go process there is no real interrupt
// context to avoid blocking in, so this uses the same mutex as
// TryPush; a bare-metal port instead guards this path with a
// disable-interrupts critical section instead of a blocking mutex.
// The method exists as a distinct name so call sites document their
// execution context, rather than relying on an ambiguous probe to
// pick task vs. ISR behavior.
func (ib *Inbox) PushISR(s sig.Signal) error {
	return ib.TryPush(s)
}

func (ib *Inbox) pushLocked(s sig.Signal) error {
	if ib.w-ib.r >= len(ib.buf) {
		return rterr.ErrQueueFull
	}
	ib.buf[ib.w%len(ib.buf)] = s
	ib.w++
	ib.cond.Signal()
	return nil
}

// TryPop performs a non-blocking dequeue. ok is false if the inbox was
// empty.
func (ib *Inbox) TryPop() (s sig.Signal, ok bool) {
	ib.mu.Lock()
	defer ib.mu.Unlock()
	return ib.popLocked()
}

func (ib *Inbox) popLocked() (s sig.Signal, ok bool) {
	if ib.r == ib.w {
		return sig.Signal{}, false
	}
	s = ib.buf[ib.r%len(ib.buf)]
	ib.buf[ib.r%len(ib.buf)] = sig.Signal{}
	ib.r++
	return s, true
}

// Pop blocks on the inbox for up to timeout, waking as soon as a
// signal is available. timeout == 0 is a strict non-block, equivalent
// to TryPop. A negative timeout blocks indefinitely.
func (ib *Inbox) Pop(timeout time.Duration) (s sig.Signal, ok bool) {
	if timeout == 0 {
		return ib.TryPop()
	}

	ib.mu.Lock()
	defer ib.mu.Unlock()

	if ib.r != ib.w {
		return ib.popLocked()
	}
	if timeout < 0 {
		for ib.r == ib.w {
			ib.cond.Wait()
		}
		return ib.popLocked()
	}

	// Bounded wait: sync.Cond has no native timeout, so a timer
	// goroutine wakes the waiter once the deadline passes.
	deadline := time.Now().Add(timeout)
	timedOut := false
	timer := time.AfterFunc(timeout, func() {
		ib.mu.Lock()
		timedOut = true
		ib.cond.Broadcast()
		ib.mu.Unlock()
	})
	defer timer.Stop()

	for ib.r == ib.w && !timedOut {
		if time.Now().After(deadline) {
			timedOut = true
			break
		}
		ib.cond.Wait()
	}
	if ib.r != ib.w {
		return ib.popLocked()
	}
	return sig.Signal{}, false
}
