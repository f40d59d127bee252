// Package clock provides the monotonic millisecond counter used for debouncing.
//
// The counter wraps around at 2^32 ms (about 49.7 days).
// Consumers must only compare differences (now - then), never absolute values.
package clock

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic millisecond counter.
type Clock interface {
	Millis() uint32
}

// System counts milliseconds since it was created.
type System struct {
	start time.Time
}

// NewSystem starts a new system clock.
func NewSystem() *System {
	return &System{start: time.Now()}
}

// Millis returns the elapsed milliseconds since NewSystem, truncated to 32 bits.
func (s *System) Millis() uint32 {
	return uint32(time.Since(s.start) / time.Millisecond)
}

// Manual is a clock which only moves when told to.
// It is used by the emulator backend and in tests.
type Manual struct {
	ms uint32
}

// NewManual returns a manual clock starting at ms.
func NewManual(ms uint32) *Manual {
	return &Manual{ms: ms}
}

func (m *Manual) Millis() uint32 {
	return atomic.LoadUint32(&m.ms)
}

// Set sets the counter to ms.
func (m *Manual) Set(ms uint32) {
	atomic.StoreUint32(&m.ms, ms)
}

// Advance moves the counter forward by d, wrapping at 2^32.
func (m *Manual) Advance(d time.Duration) {
	atomic.AddUint32(&m.ms, uint32(d/time.Millisecond))
}

// Since returns the milliseconds elapsed from then to now, tolerating one wrap of the counter.
func Since(c Clock, then uint32) uint32 {
	return c.Millis() - then
}
