package codec

import (
	"testing"

	"github.com/joeycumines/go-signalrt/sig"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := sig.New(0x0123, 42)
	s.PutU32(0xDEADBEEF)
	s.Timestamp = 123456

	b, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.ID != s.ID {
		t.Fatalf("ID = %v, want %v", got.ID, s.ID)
	}
	if got.SrcID != s.SrcID {
		t.Fatalf("SrcID = %v, want %v", got.SrcID, s.SrcID)
	}
	if got.Payload != s.Payload {
		t.Fatalf("Payload = %v, want %v", got.Payload, s.Payload)
	}
	if got.Timestamp != s.Timestamp {
		t.Fatalf("Timestamp = %v, want %v", got.Timestamp, s.Timestamp)
	}
}

func TestDecodeEmptyBuffer(t *testing.T) {
	got, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode(nil): %v", err)
	}
	if got != (sig.Signal{}) {
		t.Fatalf("Decode(nil) = %+v, want zero value", got)
	}
}

func TestDecodeRejectsTruncatedData(t *testing.T) {
	b, err := Encode(sig.New(1, 2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(b[:len(b)-1]); err == nil {
		t.Fatal("expected error decoding truncated data")
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	b, err := Encode(sig.New(5, 6))
	if err != nil {
		t.Fatal(err)
	}
	// append an unknown varint field (number 99) and confirm decode
	// still succeeds, tolerating forward-compatible additions.
	extra := append([]byte{}, b...)
	extra = append(extra, 0x98, 0x06, 0x01) // tag for field 99, varint type, value 1
	if _, err := Decode(extra); err != nil {
		t.Fatalf("Decode with unknown field: %v", err)
	}
}
