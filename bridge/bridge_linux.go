//go:build linux

package bridge

import (
	"time"

	goserial "github.com/daedaluz/goserial"
)

// OpenSerial opens name (e.g. "/dev/ttyUSB0") as a wormhole TX
// transport, using goserial's default options plus a bounded read
// timeout — writes are what WormholeTX uses, but a usable Port needs
// valid attributes set regardless.
func OpenSerial(name string, readTimeout time.Duration) (Transport, error) {
	opts := goserial.NewOptions().SetReadTimeout(readTimeout)
	return goserial.Open(name, opts)
}
