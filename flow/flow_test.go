package flow

import (
	"testing"

	"github.com/joeycumines/go-signalrt/dispatch"
	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/sig"
)

const (
	sigTrigger sig.ID = 0x0300
	sigWake    sig.ID = 0x0400
	sigDone    sig.ID = 0x0401
)

// fakeClock is a manually advanced clock.Clock for deterministic
// coroutine timing tests.
type fakeClock struct{ ms uint32 }

func (c *fakeClock) NowMS() uint32 { return c.ms }
func (c *fakeClock) InISR() bool   { return false }

// TestCoroutineTimingSequence reproduces the trigger/AwaitTime(500)/
// AwaitSignal(0x0400)/emit-DONE scenario: a single action hosts the
// whole flow and is called once per dispatch.
func TestCoroutineTimingSequence(t *testing.T) {
	clk := &fakeClock{ms: 0}

	var flowAction entity.Action
	flowAction = func(e *entity.Entity, s *sig.Signal) entity.StateID {
		f := Begin(e)
		if f.AwaitTime(clk.NowMS(), 500) {
			return 0
		}
		if f.AwaitSignal(s, sigWake) {
			return 0
		}
		e.Inbox.TryPush(sig.New(sigDone, 0))
		return f.End()
	}

	states := entity.NewStateTable([]entity.StateDef{
		{
			ID: 1,
			Rules: []entity.Rule{
				{SignalID: sigTrigger, Action: flowAction},
				{SignalID: sigWake, Action: flowAction},
			},
		},
	})
	e := entity.New(1, "flow", states, 1)
	if err := dispatch.Start(e); err != nil {
		t.Fatalf("Start: %v", err)
	}
	d := dispatch.New(clk)

	// t=0: trigger the flow; it parks on AwaitTime.
	e.Inbox.TryPush(sig.New(sigTrigger, 0))
	if err := d.Dispatch(e, 0); err != nil {
		t.Fatalf("Dispatch(trigger): %v", err)
	}
	if !e.FlowRunning() {
		t.Fatal("flow not running after trigger")
	}
	if e.FlowLine == 0 {
		t.Fatal("flow_line not saved after parking on AwaitTime")
	}

	// Before t=500, a spurious wake signal should not advance the
	// coroutine past AwaitTime (it is rule-matched, so it does get
	// dispatched here, but this test only needs the post-deadline
	// delivery to actually progress the flow — so skip to t=600).
	clk.ms = 600

	// The run loop is responsible for delivering SYS_TIMEOUT once
	// flow_wait_until has passed; emulate that delivery directly by
	// re-dispatching the same rule with any signal, since AwaitTime
	// only consults the clock, not the delivered signal id.
	e.Inbox.TryPush(sig.New(sigTrigger, 0))
	if err := d.Dispatch(e, 0); err != nil {
		t.Fatalf("Dispatch(after deadline): %v", err)
	}
	if !e.FlowRunning() {
		t.Fatal("flow ended prematurely")
	}
	if e.FlowWaitSig != sigWake {
		t.Fatalf("flow_wait_sig = %v, want sigWake", e.FlowWaitSig)
	}

	// Emit the awaited signal; flow should advance, emit DONE to
	// itself, and end.
	e.Inbox.TryPush(sig.New(sigWake, 0))
	if err := d.Dispatch(e, 0); err != nil {
		t.Fatalf("Dispatch(wake): %v", err)
	}
	if e.FlowRunning() {
		t.Fatal("flow still running after End")
	}

	done, ok := e.Inbox.TryPop()
	if !ok {
		t.Fatal("inbox empty, want DONE signal")
	}
	if done.ID != sigDone {
		t.Fatalf("popped signal id = %v, want sigDone", done.ID)
	}
}

// TestAwaitTimeZeroAdvancesImmediately covers the edge case where
// AwaitTime(0) means the very next dispatch proceeds past it.
func TestAwaitTimeZeroAdvancesImmediately(t *testing.T) {
	clk := &fakeClock{ms: 100}
	advanced := false

	var action entity.Action
	action = func(e *entity.Entity, s *sig.Signal) entity.StateID {
		f := Begin(e)
		if f.AwaitTime(clk.NowMS(), 0) {
			return 0
		}
		advanced = true
		return f.End()
	}

	states := entity.NewStateTable([]entity.StateDef{
		{ID: 1, Rules: []entity.Rule{{SignalID: sigTrigger, Action: action}}},
	})
	e := entity.New(1, "flow", states, 1)
	dispatch.Start(e)
	d := dispatch.New(clk)

	e.Inbox.TryPush(sig.New(sigTrigger, 0))
	d.Dispatch(e, 0)
	if advanced {
		t.Fatal("advanced past AwaitTime(0) on the parking call")
	}

	clk.ms++
	e.Inbox.TryPush(sig.New(sigTrigger, 0))
	d.Dispatch(e, 0)
	if !advanced {
		t.Fatal("did not advance past AwaitTime(0) on the next dispatch")
	}
}
