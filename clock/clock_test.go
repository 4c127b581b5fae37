package clock

import "testing"

func TestBeforeWraps(t *testing.T) {
	cases := []struct {
		name   string
		a, b   uint32
		before bool
	}{
		{"simple", 100, 200, true},
		{"reverse", 200, 100, false},
		{"equal", 100, 100, false},
		{"wrap", 0xFFFFFFF0, 10, true},
		{"wrap-reverse", 10, 0xFFFFFFF0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Before(c.a, c.b); got != c.before {
				t.Fatalf("Before(%d,%d) = %v, want %v", c.a, c.b, got, c.before)
			}
		})
	}
}

func TestBeforeOrEqual(t *testing.T) {
	if !BeforeOrEqual(100, 100) {
		t.Fatal("expected equal timestamps to be BeforeOrEqual")
	}
	if !BeforeOrEqual(100, 200) {
		t.Fatal("expected 100 to be BeforeOrEqual 200")
	}
	if BeforeOrEqual(200, 100) {
		t.Fatal("expected 200 to not be BeforeOrEqual 100")
	}
}

func TestSystemMonotonic(t *testing.T) {
	c := NewSystem()
	a := c.NowMS()
	b := c.NowMS()
	if Before(b, a) {
		t.Fatalf("clock went backwards: %d then %d", a, b)
	}
	if c.InISR() {
		t.Fatal("System.InISR should always be false")
	}
}

func TestForceISR(t *testing.T) {
	defer ForceISR(false)
	ForceISR(true)
	if !ForcedISR() {
		t.Fatal("expected ForcedISR to report true after ForceISR(true)")
	}
	ForceISR(false)
	if ForcedISR() {
		t.Fatal("expected ForcedISR to report false after ForceISR(false)")
	}
}
