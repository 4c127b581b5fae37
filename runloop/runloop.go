// Package runloop implements the round-robin driver: drain every
// entity's inbox, deliver SYS_TIMEOUT to any coroutine whose deadline
// has passed, and sleep when nothing happened.
package runloop

import (
	"container/heap"
	"time"

	"github.com/joeycumines/go-signalrt/clock"
	"github.com/joeycumines/go-signalrt/dispatch"
	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/sig"
)

// deadline pairs an entity with its coroutine's flow_wait_until, used
// to build the min-heap of pending wakeups each cycle.
type deadline struct {
	at uint32
	e  *entity.Entity
}

// deadlineHeap is a min-heap of pending coroutine deadlines, ordered
// by wrap-safe "at" comparison, following the same container/heap over
// a slice of value structs shape as an event-loop timer heap.
type deadlineHeap []deadline

func (h deadlineHeap) Len() int           { return len(h) }
func (h deadlineHeap) Less(i, j int) bool { return clock.Before(h[i].at, h[j].at) }
func (h deadlineHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *deadlineHeap) Push(x any) {
	*h = append(*h, x.(deadline))
}

func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Loop runs entities in round-robin, using clk as the shared time
// source and Dispatcher for the pipeline. Option functions configure
// idle behavior.
type Loop struct {
	clk        clock.Clock
	dispatcher *dispatch.Dispatcher
	idle       time.Duration
	sleep      func(time.Duration)
}

// Option configures a Loop at construction, a functional-options
// convention matching this module's other constructors.
type Option func(*Loop)

// WithIdle sets the sleep duration used when a cycle processes no
// signals and no deadline is imminent (idle_ms).
func WithIdle(d time.Duration) Option {
	return func(l *Loop) { l.idle = d }
}

// WithSleepFunc overrides the idle-sleep implementation, primarily for
// tests that want to observe or skip real sleeping.
func WithSleepFunc(fn func(time.Duration)) Option {
	return func(l *Loop) { l.sleep = fn }
}

// New constructs a Loop driving dispatcher over clk.
func New(clk clock.Clock, dispatcher *dispatch.Dispatcher, opts ...Option) *Loop {
	l := &Loop{
		clk:        clk,
		dispatcher: dispatcher,
		idle:       10 * time.Millisecond,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RunOnce processes one cycle over entities: drains every entity's
// inbox (step 1), delivers SYS_TIMEOUT to any coroutine whose deadline
// has passed (step 2), and sleeps idle_ms if nothing was processed and
// no deadline is imminent (step 3). Returns the total signals
// processed this cycle.
func (l *Loop) RunOnce(entities []*entity.Entity) int {
	processed := 0
	for _, e := range entities {
		processed += l.dispatcher.DispatchAll(e)
	}

	now := l.clk.NowMS()
	var heapEntities deadlineHeap
	for _, e := range entities {
		if e.FlowWaitUntil != 0 {
			heapEntities = append(heapEntities, deadline{at: e.FlowWaitUntil, e: e})
		}
	}
	heap.Init(&heapEntities)

	var nextDeadline uint32
	haveNext := false

	for heapEntities.Len() > 0 {
		next := heapEntities[0]
		if clock.Before(now, next.at) {
			nextDeadline = next.at
			haveNext = true
			break
		}
		heap.Pop(&heapEntities)
		next.e.FlowWaitUntil = 0
		if err := dispatch.EmitTask(next.e, l.clk, sig.New(sig.SysTimeout, 0)); err == nil {
			processed += l.dispatcher.DispatchAll(next.e)
		}
	}

	if processed == 0 {
		sleepFor := l.idle
		if haveNext {
			if until := clock.Sub(nextDeadline, now); until >= 0 && time.Duration(until)*time.Millisecond < sleepFor {
				sleepFor = time.Duration(until) * time.Millisecond
			}
		}
		l.sleep(sleepFor)
	}

	return processed
}

// Run calls RunOnce in a tight loop until stop reports true, returning
// the cumulative processed count. The main program is expected to
// invoke RunOnce directly in its own loop when it needs more control
// (e.g. integrating with a select over other channels); Run is the
// convenience form for a dedicated runtime goroutine.
func (l *Loop) Run(entities []*entity.Entity, stop func() bool) int {
	total := 0
	for !stop() {
		total += l.RunOnce(entities)
	}
	return total
}
