package supervisor

import (
	"testing"

	"github.com/joeycumines/go-signalrt/bus"
	"github.com/joeycumines/go-signalrt/dispatch"
	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/registry"
	"github.com/joeycumines/go-signalrt/sig"
)

type fakeClock struct{ ms uint32 }

func (f *fakeClock) NowMS() uint32 { return f.ms }
func (f *fakeClock) InISR() bool   { return false }

func newEntity(id entity.ID, name string) *entity.Entity {
	states := entity.NewStateTable([]entity.StateDef{{ID: 1}})
	return entity.New(id, name, states, 1)
}

func TestHandleFaultRevivesReportingEntity(t *testing.T) {
	reg := registry.New()
	b := bus.New(reg)
	clk := &fakeClock{}

	self := newEntity(1, "guardian")
	reg.Register(self)
	sv, err := NewSupervisor(self, b, clk, nil, nil)
	if err != nil {
		t.Fatalf("NewSupervisor: %v", err)
	}
	if !self.Supervisor() {
		t.Fatal("self should be flagged as supervisor")
	}

	reporting := newEntity(2, "worker")
	reg.Register(reporting)

	if err := sv.HandleFault(reporting, 7); err != nil {
		t.Fatalf("HandleFault: %v", err)
	}
	if !reporting.Supervised() {
		t.Fatal("reporting entity should be flagged supervised")
	}
	if sv.Revives() != 1 {
		t.Fatalf("Revives = %d, want 1", sv.Revives())
	}
	if reporting.Inbox.Len() != 1 {
		t.Fatalf("reporting inbox len = %d, want 1 (SYS_REVIVE)", reporting.Inbox.Len())
	}
	s, ok := reporting.Inbox.Pop(0)
	if !ok {
		t.Fatal("expected a queued signal")
	}
	if s.ID != sig.SysRevive {
		t.Fatalf("queued signal id = %v, want SysRevive", s.ID)
	}
}

func TestHandleDyingDoesNotRevive(t *testing.T) {
	reg := registry.New()
	b := bus.New(reg)
	clk := &fakeClock{}

	self := newEntity(1, "guardian")
	reg.Register(self)
	sv, err := NewSupervisor(self, b, clk, nil, nil)
	if err != nil {
		t.Fatalf("NewSupervisor: %v", err)
	}

	reporting := newEntity(2, "worker")
	reg.Register(reporting)

	sv.HandleDying(reporting)
	if sv.Revives() != 0 {
		t.Fatalf("Revives = %d, want 0", sv.Revives())
	}
	if reporting.Inbox.Len() != 0 {
		t.Fatalf("reporting inbox len = %d, want 0", reporting.Inbox.Len())
	}
}

func TestHandleFaultLogsBlackBoxDepth(t *testing.T) {
	reg := registry.New()
	b := bus.New(reg)
	clk := &fakeClock{}

	self := newEntity(1, "guardian")
	reg.Register(self)
	box := dispatch.NewBlackBox(4)
	box.Record(dispatch.Entry{SignalID: 0x42, SrcID: 3, State: 1, Timestamp: 10})

	sv, err := NewSupervisor(self, b, clk, nil, box)
	if err != nil {
		t.Fatalf("NewSupervisor: %v", err)
	}

	reporting := newEntity(2, "worker")
	reg.Register(reporting)

	if err := sv.HandleFault(reporting, 1); err != nil {
		t.Fatalf("HandleFault: %v", err)
	}
	if len(box.Recent()) != 1 {
		t.Fatalf("black box entries = %d, want 1", len(box.Recent()))
	}
}

func TestPowerVoteTakesMinimumAcrossVotes(t *testing.T) {
	pv := NewPowerVote()
	reg := registry.New()
	clk := &fakeClock{}

	a := newEntity(1, "a")
	b := newEntity(2, "b")
	reg.Register(a)
	reg.Register(b)

	pv.Cast(1, 2)
	pv.Cast(2, 0)

	mode, changed := pv.Recompute(reg, clk)
	if !changed {
		t.Fatal("expected change on first recompute")
	}
	if mode != 0 {
		t.Fatalf("mode = %d, want 0 (minimum)", mode)
	}
	if a.Inbox.Len() != 1 || b.Inbox.Len() != 1 {
		t.Fatalf("expected broadcast to both entities, got a=%d b=%d", a.Inbox.Len(), b.Inbox.Len())
	}
}

func TestPowerVoteNoChangeWhenStable(t *testing.T) {
	pv := NewPowerVote()
	reg := registry.New()
	clk := &fakeClock{}

	a := newEntity(1, "a")
	reg.Register(a)
	pv.Cast(1, 3)

	if _, changed := pv.Recompute(reg, clk); !changed {
		t.Fatal("expected change on first recompute")
	}
	a.Inbox.Pop(0)

	if _, changed := pv.Recompute(reg, clk); changed {
		t.Fatal("expected no change on stable recompute")
	}
	if a.Inbox.Len() != 0 {
		t.Fatalf("inbox len = %d, want 0 (no rebroadcast)", a.Inbox.Len())
	}
}

func TestPowerVoteWithdrawRemovesInfluence(t *testing.T) {
	pv := NewPowerVote()
	reg := registry.New()
	clk := &fakeClock{}

	a := newEntity(1, "a")
	reg.Register(a)

	pv.Cast(1, 5)
	pv.Withdraw(1)

	if _, changed := pv.Recompute(reg, clk); changed {
		t.Fatal("expected no change with an empty vote set")
	}
}
