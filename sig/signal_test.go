package sig

import "testing"

func TestReservedRange(t *testing.T) {
	if !IsReserved(SysInit) {
		t.Fatal("SysInit should be reserved")
	}
	if !IsReserved(0x00FF) {
		t.Fatal("0x00FF should be reserved")
	}
	if IsReserved(FirstUserID) {
		t.Fatal("FirstUserID should not be reserved")
	}
	if IsReserved(0) {
		t.Fatal("0x0000 should not be reserved")
	}
}

func TestPayloadViewsRoundTrip(t *testing.T) {
	var s Signal

	s.PutU8(200)
	if got := s.U8(); got != 200 {
		t.Fatalf("U8 = %d, want 200", got)
	}

	s.PutI16(-1234)
	if got := s.I16(); got != -1234 {
		t.Fatalf("I16 = %d, want -1234", got)
	}

	s.PutU32(0xDEADBEEF)
	if got := s.U32(); got != 0xDEADBEEF {
		t.Fatalf("U32 = %#x, want 0xDEADBEEF", got)
	}

	s.PutI32(-100000)
	if got := s.I32(); got != -100000 {
		t.Fatalf("I32 = %d, want -100000", got)
	}

	s.PutFloat32(3.25)
	if got := s.Float32(); got != 3.25 {
		t.Fatalf("Float32 = %v, want 3.25", got)
	}
}

func TestSignalIsCopiedByValue(t *testing.T) {
	a := New(FirstUserID, 1)
	a.PutU32(42)
	b := a
	b.PutU32(99)
	if a.U32() == b.U32() {
		t.Fatal("expected copying a Signal to not alias its payload")
	}
}

func TestWithExt(t *testing.T) {
	type payload struct{ n int }
	p := &payload{n: 7}
	s := New(FirstUserID, 1).WithExt(p)
	got, ok := s.Ext.Ptr.(*payload)
	if !ok || got.n != 7 {
		t.Fatalf("WithExt round-trip failed: %#v", s.Ext)
	}
}
