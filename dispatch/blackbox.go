package dispatch

import (
	"sync"

	"github.com/joeycumines/go-signalrt/sig"
)

// DefaultBlackBoxSize is the default capacity of a BlackBox ring
// buffer.
const DefaultBlackBoxSize = 16

// Entry is one recorded dispatch in a BlackBox.
type Entry struct {
	SignalID  sig.ID
	SrcID     uint16
	State     uint16
	Timestamp uint32
}

// BlackBox is a small ring-buffered history of recently dispatched
// signals, attached per entity, used by the tracing middleware and by
// the engine's debug assertion path.
type BlackBox struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	filled  bool
}

// NewBlackBox constructs a BlackBox with the given capacity (0 uses
// DefaultBlackBoxSize).
func NewBlackBox(capacity int) *BlackBox {
	if capacity <= 0 {
		capacity = DefaultBlackBoxSize
	}
	return &BlackBox{entries: make([]Entry, capacity)}
}

// Record appends e, overwriting the oldest entry once the buffer is
// full — the black box is a diagnostic aid, not a delivery channel, so
// unlike the Inbox it is allowed to overwrite rather than refuse.
func (b *BlackBox) Record(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[b.next] = e
	b.next = (b.next + 1) % len(b.entries)
	if b.next == 0 {
		b.filled = true
	}
}

// Recent returns up to capacity entries, oldest first.
func (b *BlackBox) Recent() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.filled {
		out := make([]Entry, b.next)
		copy(out, b.entries[:b.next])
		return out
	}
	out := make([]Entry, len(b.entries))
	copy(out, b.entries[b.next:])
	copy(out[len(b.entries)-b.next:], b.entries[:b.next])
	return out
}
