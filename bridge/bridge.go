// Package bridge implements the wormhole TX middleware: a hook that
// serializes outgoing signals and writes them to an off-chip transport.
// The transport itself (daedaluz/goserial, Linux only) lives in
// bridge_linux.go; bridge_other.go provides a portable stub so the
// package still compiles and tests everywhere, following the
// GOOS-suffixed-file convention used elsewhere in this corpus for
// platform-specific syscalls.
package bridge

import (
	"github.com/joeycumines/go-signalrt/codec"
	"github.com/joeycumines/go-signalrt/entity"
	"github.com/joeycumines/go-signalrt/sig"
)

// Transport is the minimal write side of a serial port, satisfied by
// *goserial.Port on Linux and by the stub elsewhere.
type Transport interface {
	Write(data []byte) (int, error)
}

// WormholeTX writes every signal that reaches it (every signal no
// earlier middleware stopped with Handled or Filtered), encoded via
// codec.Encode, to a Transport. It
// never mutates the signal or alters the pipeline's verdict; its only
// effect is the off-chip side effect.
type WormholeTX struct {
	t       Transport
	written uint64
	errs    uint64
}

// NewWormholeTX wraps t.
func NewWormholeTX(t Transport) *WormholeTX {
	return &WormholeTX{t: t}
}

// Middleware returns the entity.MiddlewareFunc to register, typically
// at the highest priority value (slots run in ascending priority, so
// it runs last) so it sees the fully-transformed signal.
func (w *WormholeTX) Middleware() entity.MiddlewareFunc {
	return func(e *entity.Entity, s *sig.Signal, ctx any) entity.Verdict {
		buf, err := codec.Encode(*s)
		if err != nil {
			w.errs++
			return entity.Continue
		}
		if _, err := w.t.Write(buf); err != nil {
			w.errs++
			return entity.Continue
		}
		w.written++
		return entity.Continue
	}
}

// Stats returns the running written/error counters.
func (w *WormholeTX) Stats() (written, errs uint64) {
	return w.written, w.errs
}
