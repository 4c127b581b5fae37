// Package bus implements the topic-routed publish/subscribe layer
// that complements point-to-point emission: a mapping from signal id
// (used as topic id) to subscriber entity ids, built on top of
// dispatch.Emit.
package bus

import (
	"sort"
	"sync"

	"github.com/joeycumines/go-signalrt/clock"
	"github.com/joeycumines/go-signalrt/dispatch"
	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/registry"
	"github.com/joeycumines/go-signalrt/rterr"
	"github.com/joeycumines/go-signalrt/sig"
)

// Stats tracks the running counters a production runtime surfaces for
// diagnostics: publish, delivery, drop, and no-subscriber counts
// diagnostics: publish count, delivery count, drops, and no-subscriber
// count.
type Stats struct {
	Published    uint64
	Delivered    uint64
	Dropped      uint64
	NoSubscriber uint64
}

// Bus is a shared-mutable topic table; unlike an Entity's own state,
// it requires internal synchronization since subscribe/unsubscribe can
// be called from any goroutine.
type Bus struct {
	reg *registry.Registry

	mu     sync.RWMutex
	topics map[sig.ID]map[entity.ID]struct{}
	stats  Stats
}

// New constructs a Bus that resolves subscriber ids against reg.
func New(reg *registry.Registry) *Bus {
	return &Bus{reg: reg, topics: make(map[sig.ID]map[entity.ID]struct{})}
}

// Subscribe adds e's id to topic's subscriber set. Creating the topic
// entry on first use. Subscribing twice is a no-op success.
func (b *Bus) Subscribe(e *entity.Entity, topic sig.ID) error {
	if e == nil {
		return rterr.ErrInvalidArg
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[entity.ID]struct{})
		b.topics[topic] = subs
	}
	subs[e.ID] = struct{}{}
	return nil
}

// Unsubscribe removes e's id from topic's subscriber set. Returns
// ErrNotFound if e was not subscribed. When the subscriber count
// reaches zero the topic entry is reclaimed.
func (b *Bus) Unsubscribe(e *entity.Entity, topic sig.ID) error {
	if e == nil {
		return rterr.ErrInvalidArg
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.topics[topic]
	if !ok {
		return rterr.ErrNotFound
	}
	if _, ok := subs[e.ID]; !ok {
		return rterr.ErrNotFound
	}
	delete(subs, e.ID)
	if len(subs) == 0 {
		delete(b.topics, topic)
	}
	return nil
}

// Publish uses s.ID as the topic and enqueues a copy into every
// subscriber's inbox via dispatch.Emit, in ascending subscriber-id
// order within this call. Returns the
// count actually delivered; a full inbox counts as a drop and does
// not abort delivery to the remaining subscribers.
func (b *Bus) Publish(clk clock.Clock, s sig.Signal) int {
	return b.publish(clk, s, dispatch.Emit)
}

// PublishFromISR is the ISR-safe publish path: non-blocking, uses the
// ISR push variant explicitly rather than probing clk.InISR() per
// subscriber.
func (b *Bus) PublishFromISR(clk clock.Clock, s sig.Signal) int {
	return b.publish(clk, s, dispatch.EmitFromISR)
}

func (b *Bus) publish(clk clock.Clock, s sig.Signal, emit func(*entity.Entity, clock.Clock, sig.Signal) error) int {
	b.mu.RLock()
	subs := b.topics[s.ID]
	ids := make([]entity.ID, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	b.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	b.mu.Lock()
	b.stats.Published++
	b.mu.Unlock()

	if len(ids) == 0 {
		b.mu.Lock()
		b.stats.NoSubscriber++
		b.mu.Unlock()
		return 0
	}

	delivered := 0
	for _, id := range ids {
		target := b.reg.Get(id)
		if target == nil {
			continue
		}
		if err := emit(target, clk, s); err == nil {
			delivered++
		}
	}

	b.mu.Lock()
	b.stats.Delivered += uint64(delivered)
	b.stats.Dropped += uint64(len(ids) - delivered)
	b.mu.Unlock()

	return delivered
}

// SubscriberCount returns the current number of subscribers to topic.
func (b *Bus) SubscriberCount(topic sig.ID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Stats returns a snapshot of the running counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stats
}
