package registry

import (
	"errors"
	"testing"

	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/rterr"
)

func newEntity(id entity.ID) *entity.Entity {
	states := entity.NewStateTable([]entity.StateDef{{ID: 1}})
	return entity.New(id, "e", states, 1)
}

func TestRegisterGetUnregister(t *testing.T) {
	r := New()
	e := newEntity(1)
	if err := r.Register(e); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := r.Get(1); got != e {
		t.Fatalf("Get returned %v, want %v", got, e)
	}
	r.Unregister(1)
	if got := r.Get(1); got != nil {
		t.Fatalf("Get after Unregister returned %v, want nil", got)
	}
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := New()
	if err := r.Register(newEntity(1)); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(newEntity(1)); !errors.Is(err, rterr.ErrAlreadyExists) {
		t.Fatalf("got %v, want ErrAlreadyExists", err)
	}
}

func TestRegisterNilFails(t *testing.T) {
	r := New()
	if err := r.Register(nil); !errors.Is(err, rterr.ErrInvalidArg) {
		t.Fatalf("got %v, want ErrInvalidArg", err)
	}
}

func TestEachVisitsInIDOrder(t *testing.T) {
	r := New()
	for _, id := range []entity.ID{3, 1, 2} {
		if err := r.Register(newEntity(id)); err != nil {
			t.Fatal(err)
		}
	}
	var seen []entity.ID
	r.Each(func(e *entity.Entity) bool {
		seen = append(seen, e.ID)
		return true
	})
	want := []entity.ID{1, 2, 3}
	for i, id := range want {
		if seen[i] != id {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
}

func TestEachStopsEarly(t *testing.T) {
	r := New()
	for _, id := range []entity.ID{1, 2, 3} {
		r.Register(newEntity(id))
	}
	count := 0
	r.Each(func(e *entity.Entity) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}
