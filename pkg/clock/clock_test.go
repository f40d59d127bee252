package clock

import (
	"math"
	"testing"
	"time"
)

func TestManualWrapsAround(t *testing.T) {
	c := NewManual(math.MaxUint32 - 1)
	then := c.Millis()

	c.Advance(5 * time.Millisecond)
	if c.Millis() != 3 {
		t.Fatalf("Millis() = %v, want 3", c.Millis())
	}
	if d := Since(c, then); d != 5 {
		t.Fatalf("Since() = %v, want 5", d)
	}
}

func TestSystemIsMonotonic(t *testing.T) {
	c := NewSystem()
	a := c.Millis()
	time.Sleep(3 * time.Millisecond)
	if d := Since(c, a); d < 3 {
		t.Fatalf("Since() = %v, want >= 3", d)
	}
}
