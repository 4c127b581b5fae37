// Package supervisor implements the fault-reporting and power-mode
// collaborators: Supervisor subscribes to SYS_FAULT/SYS_DYING and logs
// plus optionally revives the reporting entity; PowerVote arbitrates a
// minimum power mode across every entity that casts a vote. Both are
// driven by the run loop like everything else, with no private
// goroutines and no hidden timers.
//
// Supervisor's fault-then-retry shape is grounded on the queue
// runner's completion handler elsewhere in this corpus: a per-source
// state machine that logs an error result and decides whether to
// resubmit work, transplanted here from disk I/O completions to
// entity fault signals.
package supervisor

import (
	"sort"
	"sync"

	"github.com/joeycumines/go-signalrt/bus"
	"github.com/joeycumines/go-signalrt/clock"
	"github.com/joeycumines/go-signalrt/dispatch"
	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/registry"
	"github.com/joeycumines/go-signalrt/sig"
	"github.com/joeycumines/logiface"
	slogiface "github.com/joeycumines/logiface-slog"
)

// Supervisor subscribes to SYS_FAULT and SYS_DYING on a bus and, on
// receipt, logs a structured fault report and may re-issue SYS_REVIVE
// to the reporting entity.
type Supervisor struct {
	self    *entity.Entity
	bus     *bus.Bus
	clk     clock.Clock
	logger  *logiface.Logger[*slogiface.Event]
	box     *dispatch.BlackBox
	revives uint64
}

// NewSupervisor marks self as a supervisor, subscribes it to
// SYS_FAULT and SYS_DYING on b, and returns a Supervisor handle used
// by HandleFault/HandleDying, the fault-signal actions self's state
// table should route to.
func NewSupervisor(self *entity.Entity, b *bus.Bus, clk clock.Clock, logger *logiface.Logger[*slogiface.Event], box *dispatch.BlackBox) (*Supervisor, error) {
	self.SetSupervisor(true)
	if err := b.Subscribe(self, sig.SysFault); err != nil {
		return nil, err
	}
	if err := b.Subscribe(self, sig.SysDying); err != nil {
		return nil, err
	}
	return &Supervisor{self: self, bus: b, clk: clk, logger: logger, box: box}, nil
}

// HandleFault is the action SUPERVISOR's state table routes SYS_FAULT
// to. It logs a fault report — including recent black-box entries if
// one is attached — then re-issues SYS_REVIVE, with the supervisor's
// id as src_id, to reporting, the entity passed in by the caller.
func (s *Supervisor) HandleFault(reporting *entity.Entity, faultCode uint32) error {
	reporting.SetSupervised(true)
	if s.logger != nil {
		event := s.logger.Err().
			Int("entity", int(reporting.ID)).
			Int("fault_code", int(faultCode))
		if s.box != nil {
			event = event.Int("black_box_entries", len(s.box.Recent()))
		}
		event.Log("entity fault reported")
	}

	s.revives++
	return dispatch.Emit(reporting, s.clk, sig.New(sig.SysRevive, uint16(s.self.ID)))
}

// HandleDying is the action SUPERVISOR's state table routes SYS_DYING
// to: logs the report without reviving (a dying entity has already
// chosen to exit; resuscitating it is the caller's decision, not an
// automatic one).
func (s *Supervisor) HandleDying(reporting *entity.Entity) {
	if s.logger != nil {
		s.logger.Notice().Int("entity", int(reporting.ID)).Log("entity reported dying")
	}
}

// Revives returns the count of SYS_REVIVE signals issued.
func (s *Supervisor) Revives() uint64 { return s.revives }

// PowerVote arbitrates the minimum power mode able to satisfy every
// live vote, broadcasting SYS_POWER_MODE on change.
type PowerVote struct {
	mu       sync.Mutex
	votes    map[entity.ID]uint32
	current  uint32
	hasVotes bool
}

// NewPowerVote constructs an empty arbiter.
func NewPowerVote() *PowerVote {
	return &PowerVote{votes: make(map[entity.ID]uint32)}
}

// Cast records id's vote: the highest power mode it permits (a
// smaller mode value is assumed to mean lower power / more
// restrictive, matching the convention a caller's mode enum defines),
// so the minimum across votes is the mode every vote permits.
func (v *PowerVote) Cast(id entity.ID, mode uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.votes[id] = mode
}

// Withdraw removes id's vote, e.g. when the entity stops caring about
// power mode or is torn down.
func (v *PowerVote) Withdraw(id entity.ID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.votes, id)
}

// Recompute finds the minimum mode across all live votes. If it
// differs from the previously broadcast mode (or no mode has ever been
// broadcast), it broadcasts SYS_POWER_MODE carrying the new mode in
// the payload to every entity registered on reg, and returns true. With
// no live votes, Recompute does nothing and returns false.
func (v *PowerVote) Recompute(reg *registry.Registry, clk clock.Clock) (mode uint32, changed bool) {
	v.mu.Lock()
	if len(v.votes) == 0 {
		v.mu.Unlock()
		return 0, false
	}
	ids := make([]entity.ID, 0, len(v.votes))
	for id := range v.votes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	min := v.votes[ids[0]]
	for _, id := range ids[1:] {
		if v.votes[id] < min {
			min = v.votes[id]
		}
	}
	same := v.hasVotes && min == v.current
	v.current = min
	v.hasVotes = true
	v.mu.Unlock()

	if same {
		return min, false
	}

	s := sig.New(sig.SysPowerMode, 0)
	s.PutU32(min)
	reg.Each(func(e *entity.Entity) bool {
		dispatch.Emit(e, clk, s)
		return true
	})
	return min, true
}
