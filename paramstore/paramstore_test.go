package paramstore

import (
	"testing"

	"github.com/joeycumines/go-signalrt/bus"
	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/registry"
	"github.com/joeycumines/go-signalrt/sig"
)

type fakeClock struct{ ms uint32 }

func (f *fakeClock) NowMS() uint32 { return f.ms }
func (f *fakeClock) InISR() bool   { return false }

func newWatcher(id entity.ID) *entity.Entity {
	states := entity.NewStateTable([]entity.StateDef{{ID: 1}})
	return entity.New(id, "watcher", states, 1)
}

func TestSetNotifiesSubscribersWithNewValue(t *testing.T) {
	reg := registry.New()
	b := bus.New(reg)
	s := New(b)
	clk := &fakeClock{}

	w := newWatcher(1)
	reg.Register(w)
	if err := b.Subscribe(w, sig.SysParamChanged); err != nil {
		t.Fatal(err)
	}

	n := s.SetInt32(clk, 10, -42)
	if n != 1 {
		t.Fatalf("SetInt32 delivered %d, want 1", n)
	}
	got, ok := w.Inbox.Pop(0)
	if !ok {
		t.Fatal("expected a queued change notification")
	}
	if got.SrcID != 10 {
		t.Fatalf("SrcID = %d, want 10 (the key)", got.SrcID)
	}

	v, ok := s.GetInt32(10)
	if !ok || v != -42 {
		t.Fatalf("GetInt32 = %d,%v want -42,true", v, ok)
	}
}

func TestSetWithNoSubscribersDoesNotPublish(t *testing.T) {
	reg := registry.New()
	b := bus.New(reg)
	s := New(b)
	clk := &fakeClock{}

	n := s.SetBool(clk, 1, true)
	if n != 0 {
		t.Fatalf("SetBool delivered %d, want 0", n)
	}
	v, ok := s.GetBool(1)
	if !ok || !v {
		t.Fatal("value should still be stored locally even with no subscribers")
	}
}

func TestGetWrongKindReturnsNotOK(t *testing.T) {
	reg := registry.New()
	b := bus.New(reg)
	s := New(b)
	clk := &fakeClock{}

	s.SetFloat32(clk, 5, 1.5)
	if _, ok := s.GetInt32(5); ok {
		t.Fatal("GetInt32 on a float32 key should report not ok")
	}
	if _, ok := s.GetBool(99); ok {
		t.Fatal("GetBool on an unset key should report not ok")
	}
}

func TestReadyPublishesOnlyOnce(t *testing.T) {
	reg := registry.New()
	b := bus.New(reg)
	s := New(b)
	clk := &fakeClock{}

	w := newWatcher(1)
	reg.Register(w)
	if err := b.Subscribe(w, sig.SysParamReady); err != nil {
		t.Fatal(err)
	}

	if n := s.Ready(clk); n != 1 {
		t.Fatalf("first Ready delivered %d, want 1", n)
	}
	if n := s.Ready(clk); n != 0 {
		t.Fatalf("second Ready delivered %d, want 0 (already ready)", n)
	}
	if w.Inbox.Len() != 1 {
		t.Fatalf("inbox len = %d, want 1", w.Inbox.Len())
	}
}
