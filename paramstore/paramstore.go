// Package paramstore implements an in-memory, typed key/value table
// of small parameter values (mirroring the numeric views sig.Signal's
// payload already supports), and tells interested entities about
// changes over the bus rather than requiring them to poll.
package paramstore

import (
	"math"
	"sync"

	"github.com/joeycumines/go-signalrt/bus"
	"github.com/joeycumines/go-signalrt/clock"
	"github.com/joeycumines/go-signalrt/sig"
)

// Kind identifies the type a parameter's bits should be read back as.
type Kind uint8

const (
	KindInt32 Kind = iota
	KindFloat32
	KindBool
)

type param struct {
	bits uint32
	kind Kind
}

// Store is a typed key/value table keyed by a small numeric key
// (carried as a signal's src_id on change notification, so keys must
// fit in uint16).
type Store struct {
	mu     sync.RWMutex
	values map[uint16]param
	bus    *bus.Bus
	ready  bool
}

// New constructs an empty Store that publishes change notifications
// on b.
func New(b *bus.Bus) *Store {
	return &Store{values: make(map[uint16]param), bus: b}
}

// SetInt32 stores an int32 value for key and publishes SYS_PARAM_CHANGED.
func (s *Store) SetInt32(clk clock.Clock, key uint16, v int32) int {
	return s.set(clk, key, uint32(v), KindInt32)
}

// SetFloat32 stores a float32 value for key and publishes SYS_PARAM_CHANGED.
func (s *Store) SetFloat32(clk clock.Clock, key uint16, v float32) int {
	return s.set(clk, key, math.Float32bits(v), KindFloat32)
}

// SetBool stores a bool value for key and publishes SYS_PARAM_CHANGED.
func (s *Store) SetBool(clk clock.Clock, key uint16, v bool) int {
	var bits uint32
	if v {
		bits = 1
	}
	return s.set(clk, key, bits, KindBool)
}

func (s *Store) set(clk clock.Clock, key uint16, bits uint32, kind Kind) int {
	s.mu.Lock()
	s.values[key] = param{bits: bits, kind: kind}
	s.mu.Unlock()

	if s.bus == nil || s.bus.SubscriberCount(sig.SysParamChanged) == 0 {
		return 0
	}
	notice := sig.New(sig.SysParamChanged, key)
	notice.PutU32(bits)
	return s.bus.Publish(clk, notice)
}

// GetInt32 reads back key as an int32. ok is false if key is unset or
// was last written as a different kind.
func (s *Store) GetInt32(key uint16) (v int32, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, present := s.values[key]
	if !present || p.kind != KindInt32 {
		return 0, false
	}
	return int32(p.bits), true
}

// GetFloat32 reads back key as a float32. ok is false if key is unset
// or was last written as a different kind.
func (s *Store) GetFloat32(key uint16) (v float32, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, present := s.values[key]
	if !present || p.kind != KindFloat32 {
		return 0, false
	}
	return math.Float32frombits(p.bits), true
}

// GetBool reads back key as a bool. ok is false if key is unset or was
// last written as a different kind.
func (s *Store) GetBool(key uint16) (v bool, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, present := s.values[key]
	if !present || p.kind != KindBool {
		return false, false
	}
	return p.bits != 0, true
}

// Ready publishes SYS_PARAM_READY exactly once; subsequent calls are
// no-ops. Call after an initial load from a backing kvstore.KV so
// dependent entities know the table holds real values rather than
// zero defaults.
func (s *Store) Ready(clk clock.Clock) int {
	s.mu.Lock()
	if s.ready {
		s.mu.Unlock()
		return 0
	}
	s.ready = true
	s.mu.Unlock()

	if s.bus == nil {
		return 0
	}
	return s.bus.Publish(clk, sig.New(sig.SysParamReady, 0))
}
