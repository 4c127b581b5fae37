// Package sig defines the Signal value type: the fixed-size message
// that flows between entities. Signals are copied on emission — once
// enqueued, the producer's stack may be reused — so Signal carries no
// pointers of its own beyond the opaque Ext handle, which is a
// non-owning reference to caller-provided storage that must outlive
// delivery.
package sig

import (
	"encoding/binary"
	"math"
)

// PayloadSize is the inline payload size in bytes, 4 by default. A
// systems-language port makes this a
// compile-time constant per build; this Go port fixes it at the
// package level for the same reason — Signal is a plain value type
// with no per-instance sizing, so every runtime in a process shares it.
const PayloadSize = 4

// ID identifies a signal. IDs in [0x0001, 0x00FF] are reserved system
// signals; user-defined signal IDs start at 0x0100.
type ID uint16

// Reserved system signal IDs.
const (
	SysInit         ID = 0x0001
	SysEntry        ID = 0x0002
	SysExit         ID = 0x0003
	SysTick         ID = 0x0004
	SysTimeout      ID = 0x0005
	SysDying        ID = 0x0006
	SysRevive       ID = 0x0007
	SysReset        ID = 0x0008
	SysSuspend      ID = 0x0009
	SysResume       ID = 0x000A
	SysFault        ID = 0x0010
	SysPowerVote    ID = 0x0011
	SysPowerMode    ID = 0x0012
	SysParamChanged ID = 0x0020
	SysParamReady   ID = 0x0021
)

// FirstUserID is the first signal ID available for application use.
const FirstUserID ID = 0x0100

// IsReserved reports whether id falls in the reserved system range.
func IsReserved(id ID) bool {
	return id >= 0x0001 && id <= 0x00FF
}

// ExtHandle is a non-owning reference to caller-provided static or
// stack storage, valid until the dispatch that receives the signal
// returns. The core never allocates, copies, or frees the referenced
// data; it is opaque to the dispatch engine.
type ExtHandle struct {
	Ptr any
}

// Signal is the fixed-size message record delivered to exactly one
// entity (per Emit) or to many (per Broadcast/Publish). It is a plain
// value type: assigning or returning a Signal copies it.
type Signal struct {
	ID        ID
	SrcID     uint16
	Payload   [PayloadSize]byte
	Ext       ExtHandle
	Timestamp uint32 // milliseconds since boot; wraps, per clock.Clock
}

// New constructs a Signal with the given id and source, zeroed payload
// and no ext handle. Timestamp is left at 0; dispatch.Emit stamps it
// if timestamps are enabled.
func New(id ID, srcID uint16) Signal {
	return Signal{ID: id, SrcID: srcID}
}

// WithExt returns a copy of s carrying the given ext handle.
func (s Signal) WithExt(ext any) Signal {
	s.Ext = ExtHandle{Ptr: ext}
	return s
}

// --- Typed payload views ---
//
// The payload is a small byte buffer viewable as unsigned/signed
// 8/16/32 or float; views use little-endian encoding regardless of
// host byte order, so a signal encoded on one chip decodes identically
// on another (relevant to the wire codec and wormhole bridge).

// PutU8 stores v at payload offset 0.
func (s *Signal) PutU8(v uint8) { s.Payload[0] = v }

// U8 reads payload offset 0 as uint8.
func (s Signal) U8() uint8 { return s.Payload[0] }

// PutI8 stores v at payload offset 0.
func (s *Signal) PutI8(v int8) { s.Payload[0] = byte(v) }

// I8 reads payload offset 0 as int8.
func (s Signal) I8() int8 { return int8(s.Payload[0]) }

// PutU16 stores v at payload offset 0, little-endian.
func (s *Signal) PutU16(v uint16) { binary.LittleEndian.PutUint16(s.Payload[0:2], v) }

// U16 reads payload offset 0 as uint16, little-endian.
func (s Signal) U16() uint16 { return binary.LittleEndian.Uint16(s.Payload[0:2]) }

// PutI16 stores v at payload offset 0, little-endian.
func (s *Signal) PutI16(v int16) { binary.LittleEndian.PutUint16(s.Payload[0:2], uint16(v)) }

// I16 reads payload offset 0 as int16, little-endian.
func (s Signal) I16() int16 { return int16(binary.LittleEndian.Uint16(s.Payload[0:2])) }

// PutU32 stores v across the full (default-sized) payload, little-endian.
func (s *Signal) PutU32(v uint32) { binary.LittleEndian.PutUint32(s.Payload[0:4], v) }

// U32 reads the full payload as uint32, little-endian.
func (s Signal) U32() uint32 { return binary.LittleEndian.Uint32(s.Payload[0:4]) }

// PutI32 stores v across the full payload, little-endian.
func (s *Signal) PutI32(v int32) { binary.LittleEndian.PutUint32(s.Payload[0:4], uint32(v)) }

// I32 reads the full payload as int32, little-endian.
func (s Signal) I32() int32 { return int32(binary.LittleEndian.Uint32(s.Payload[0:4])) }

// PutFloat32 stores v across the full payload, bit-reinterpreted.
func (s *Signal) PutFloat32(v float32) { s.PutU32(math.Float32bits(v)) }

// Float32 reads the full payload as a float32 bit pattern.
func (s Signal) Float32() float32 { return math.Float32frombits(s.U32()) }
