package pot

import (
	"testing"
)

// samples returns the readings in order and repeats the last one.
type samples struct {
	values []int
	reads  int
}

func (s *samples) Read() int {
	v := s.values[len(s.values)-1]
	if s.reads < len(s.values) {
		v = s.values[s.reads]
	}
	s.reads++
	return v
}

type selector struct {
	selected []int
}

func (s *selector) Select(channel int) {
	s.selected = append(s.selected, channel)
}

func TestHysteresisScenario(t *testing.T) {
	in := &samples{values: []int{100, 100, 100, 112, 112}}
	p := New(Config{Pin: 0}, in)

	want := []int{NoChange, NoChange, 14, NoChange}
	for i, w := range want {
		if got := p.GetValue(); got != w {
			t.Fatalf("read %d: got %v, want %v", i+1, got, w)
		}
	}
	if p.Value() != 14 {
		t.Fatalf("Value() = %v, want 14", p.Value())
	}
}

func TestThresholdBoundary(t *testing.T) {
	tests := []struct {
		name     string
		baseline int
		raw      int
		want     int
	}{
		{"below band up", 96, 105, NoChange},
		{"at band up", 96, 106, 13},
		{"below band down", 96, 87, NoChange},
		{"at band down", 96, 86, 10},
		{"full scale", 0, 1023, 127},
		{"to zero", 1023, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Config{}, &samples{values: []int{tt.baseline, tt.raw}})
			if got := p.GetValue(); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStableInputReportsNoChange(t *testing.T) {
	p := New(Config{}, &samples{values: []int{500, 504, 498, 503, 500, 495}})
	for i := 0; i < 10; i++ {
		if got := p.GetValue(); got != NoChange {
			t.Fatalf("read %d: got %v, want no change", i, got)
		}
	}
}

func TestReportedValueIsReexpanded(t *testing.T) {
	// 119 reports 14 and stores 112 as reference, so 122 (delta 10 from 112) reports again
	p := New(Config{}, &samples{values: []int{100, 119, 122}})

	if got := p.GetValue(); got != 14 {
		t.Fatalf("got %v, want 14", got)
	}
	if got := p.GetValue(); got != 15 {
		t.Fatalf("got %v, want 15", got)
	}
}

func TestQuantizeIdempotent(t *testing.T) {
	for v := 0; v < 1024; v++ {
		q := Quantize(v)
		if got := Quantize(Expand(q)); got != q {
			t.Fatalf("Quantize(Expand(Quantize(%v))) = %v, want %v", v, got, q)
		}
	}
}

func TestMuxedPotSelectsBeforeEveryRead(t *testing.T) {
	sel := &selector{}
	in := &samples{values: []int{0, 0, 200}}
	p := NewMuxed(Config{Pin: 1}, sel, 5, in)

	p.GetValue()
	p.GetValue()

	if len(sel.selected) != in.reads {
		t.Fatalf("%v selects for %v reads", len(sel.selected), in.reads)
	}
	for _, c := range sel.selected {
		if c != 5 {
			t.Fatalf("selected channel %v, want 5", c)
		}
	}
	if ch, ok := p.Channel(); !ok || ch != 5 {
		t.Fatalf("Channel() = %v, %v", ch, ok)
	}
}

func TestNewValue(t *testing.T) {
	p := New(Config{Mapping: Mapping{Command: 0xb0, Control: 1}}, &samples{values: []int{0}})
	p.NewValue(0xb0, 7, 2)

	if m := p.Mapping(); m != (Mapping{Command: 0xb0, Control: 7, Channel: 2}) {
		t.Fatalf("mapping = %+v", m)
	}
}
