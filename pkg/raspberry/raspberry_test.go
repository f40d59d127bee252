package raspberry

import (
	"errors"
	"testing"

	"cascade/pkg/port"
)

func TestEmulatorInputBias(t *testing.T) {
	e := NewEmulator()

	up, err := e.Input(4, BiasPullUp)
	if err != nil {
		t.Fatal(err)
	}
	down, err := e.Input(5, BiasPullDown)
	if err != nil {
		t.Fatal(err)
	}

	if up.Read() != port.High || down.Read() != port.Low {
		t.Fatalf("pullup=%v pulldown=%v", up.Read(), down.Read())
	}

	if err := e.Set(4, 0, port.Low); err != nil {
		t.Fatal(err)
	}
	if up.Read() != port.Low {
		t.Fatalf("pin 4 = %v after Set", up.Read())
	}
}

func TestEmulatorRejectsInvalidRequests(t *testing.T) {
	e := NewEmulator()

	if _, err := e.Input(1, "floating"); !errors.Is(err, port.ErrInvalidParam) {
		t.Fatalf("invalid bias: got %v", err)
	}
	if _, err := e.Output(2); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Output(2); err == nil {
		t.Fatal("pin 2 requested twice")
	}
	if err := e.Set(9, 0, port.High); !errors.Is(err, port.ErrInvalidParam) {
		t.Fatalf("unknown pin: got %v", err)
	}
}

func TestEmulatorRoutedAnalog(t *testing.T) {
	e := NewEmulator()
	s0, _ := e.Output(15)
	s1, _ := e.Output(16)
	s2, _ := e.Output(14)
	e.Route(0, []int{15, 16, 14})

	e.SetRaw(0, 0, 100)
	e.SetRaw(0, 5, 900)

	in, _ := e.Analog(0)
	if got := in.Read(); got != 100 {
		t.Fatalf("channel 0 = %v, want 100", got)
	}

	s0.Write(port.High)
	s1.Write(port.Low)
	s2.Write(port.High)
	if got := in.Read(); got != 900 {
		t.Fatalf("channel 5 = %v, want 900", got)
	}
}

func TestEmulatorRoutedDigital(t *testing.T) {
	e := NewEmulator()
	s0, _ := e.Output(22)
	s1, _ := e.Output(23)
	s2, _ := e.Output(24)
	in, err := e.Input(17, BiasPullUp)
	if err != nil {
		t.Fatal(err)
	}
	e.RouteDigital(17, []int{22, 23, 24})

	if err := e.Set(17, 1, port.Low); err != nil {
		t.Fatal(err)
	}

	for ch := 0; ch < 8; ch++ {
		s0.Write(port.Level(ch & 1))
		s1.Write(port.Level(ch >> 1 & 1))
		s2.Write(port.Level(ch >> 2 & 1))

		want := port.High
		if ch == 1 {
			want = port.Low
		}
		if got := in.Read(); got != want {
			t.Fatalf("channel %v = %v, want %v", ch, got, want)
		}
		if got, err := e.Level(17, ch); err != nil || got != want {
			t.Fatalf("Level(17, %v) = %v, %v", ch, got, err)
		}
	}

	if err := e.Set(4, 0, port.Low); !errors.Is(err, port.ErrInvalidParam) {
		t.Fatalf("unknown pin: got %v", err)
	}
}

func TestEmulatorChannelOnPlainPin(t *testing.T) {
	e := NewEmulator()
	if _, err := e.Input(4, BiasPullUp); err != nil {
		t.Fatal(err)
	}

	if err := e.Set(4, 3, port.Low); !errors.Is(err, port.ErrInvalidParam) {
		t.Fatalf("Set channel 3 on plain pin: got %v", err)
	}
	if _, err := e.Level(4, 3); !errors.Is(err, port.ErrInvalidParam) {
		t.Fatalf("Level channel 3 on plain pin: got %v", err)
	}
	if l, err := e.Level(4, 0); err != nil || l != port.High {
		t.Fatalf("Level(4, 0) = %v, %v", l, err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("serial", ""); !errors.Is(err, port.ErrInvalidParam) {
		t.Fatalf("got %v, want port.ErrInvalidParam", err)
	}
	g, err := Open(BackendEmulator, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.(*Emulator); !ok {
		t.Fatalf("got %T, want *Emulator", g)
	}
}

func TestDecodeMCP3008(t *testing.T) {
	tests := []struct {
		rx   []byte
		want int
	}{
		{[]byte{0xff, 0x00, 0x00}, 0},
		{[]byte{0xff, 0xfb, 0xff}, 1023},
		{[]byte{0x00, 0x02, 0x10}, 528},
	}

	for _, tt := range tests {
		if got := decodeMCP3008(tt.rx); got != tt.want {
			t.Fatalf("decode(% x) = %v, want %v", tt.rx, got, tt.want)
		}
	}
}
