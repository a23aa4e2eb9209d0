// Package clock supplies the current time as epoch milliseconds.
package clock

import (
	"github.com/jonboulle/clockwork"

	"datetime/internal/calendar"
)

// Source returns a fresh EpochMillis on every call. Two calls are not ordered
// relative to each other; read once and reuse the value when a consistent
// snapshot is needed.
type Source interface {
	NowMillis() calendar.EpochMillis
}

// System reads the wall clock through a clockwork.Clock.
type System struct {
	clock clockwork.Clock
}

// NewSystem returns a Source over the real wall clock.
func NewSystem() *System {
	return &System{clock: clockwork.NewRealClock()}
}

// NewSystemWith wraps c, typically a clockwork.FakeClock in tests.
func NewSystemWith(c clockwork.Clock) *System {
	return &System{clock: c}
}

// NowMillis implements Source. Instants before the epoch read as zero.
func (s *System) NowMillis() calendar.EpochMillis {
	ms := s.clock.Now().UnixMilli()
	if ms < 0 {
		return 0
	}
	return calendar.EpochMillis(ms)
}

// Fixed is a Source that always returns the same value.
type Fixed calendar.EpochMillis

// NowMillis implements Source.
func (f Fixed) NowMillis() calendar.EpochMillis {
	return calendar.EpochMillis(f)
}

var (
	_ Source = (*System)(nil)
	_ Source = Fixed(0)
)
