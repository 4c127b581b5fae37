package middleware

import (
	"github.com/joeycumines/go-signalrt/dispatch"
	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/sig"
	"github.com/joeycumines/logiface"
	slogiface "github.com/joeycumines/logiface-slog"
)

// Trace is a Transform-only middleware (it never filters): it records
// every dispatched signal into the entity's attached dispatch.BlackBox
// ring buffer and, if a logger was supplied, logs it at Debug level.
type Trace struct {
	box    *dispatch.BlackBox
	logger *logiface.Logger[*slogiface.Event]
	name   string
}

// NewTrace constructs a Trace middleware writing into box. logger may
// be nil to disable structured logging and only populate the black
// box. name labels log lines (typically the entity's Name).
func NewTrace(box *dispatch.BlackBox, logger *logiface.Logger[*slogiface.Event], name string) *Trace {
	return &Trace{box: box, logger: logger, name: name}
}

// Middleware returns the entity.MiddlewareFunc to register. Register
// it at the lowest priority among recording middleware so it captures
// the signal as originally delivered, before any Transform rewrites it
// — or at the highest, to record the post-transform view; either is a
// caller choice via priority.
func (tr *Trace) Middleware() entity.MiddlewareFunc {
	return func(e *entity.Entity, s *sig.Signal, ctx any) entity.Verdict {
		if tr.box != nil {
			tr.box.Record(dispatch.Entry{
				SignalID:  s.ID,
				SrcID:     s.SrcID,
				State:     uint16(e.CurrentState()),
				Timestamp: s.Timestamp,
			})
		}
		if tr.logger != nil {
			tr.logger.Debug().
				Str("entity", tr.name).
				Int("signal_id", int(s.ID)).
				Int("src_id", int(s.SrcID)).
				Int("state", int(e.CurrentState())).
				Log("dispatch trace")
		}
		return entity.Transform
	}
}
