//go:build !linux

package bridge

import (
	"time"

	"github.com/joeycumines/go-signalrt/rterr"
)

// stubTransport is the non-Linux WormholeTX transport: every write
// fails with ErrDisabled, so a package built off Linux still compiles
// and behaves predictably rather than silently dropping signals.
type stubTransport struct{}

func (stubTransport) Write(data []byte) (int, error) {
	return 0, rterr.ErrDisabled
}

// OpenSerial is unavailable off Linux; it always returns ErrDisabled.
func OpenSerial(name string, readTimeout time.Duration) (Transport, error) {
	return stubTransport{}, rterr.ErrDisabled
}
