// Package countdown derives time-remaining state for an event date.
package countdown

import (
	"fmt"
	"time"
)

// Remaining is the countdown to a target instant, broken into display
// components. When Elapsed is true the component fields are zero and
// meaningless.
type Remaining struct {
	Days    int
	Hours   int // 0..23
	Minutes int // 0..59
	Seconds int // 0..59
	Elapsed bool
}

// Compute derives the countdown from target relative to now. A delta of zero
// or less is Elapsed: the event has started, there is nothing left to count.
// Components are floor-divided from the millisecond delta, so they never go
// negative on the non-elapsed branch.
func Compute(target, now time.Time) Remaining {
	delta := target.Sub(now)
	if delta <= 0 {
		return Remaining{Elapsed: true}
	}

	ms := delta.Milliseconds()
	return Remaining{
		Days:    int(ms / (1000 * 60 * 60 * 24)),
		Hours:   int(ms / (1000 * 60 * 60) % 24),
		Minutes: int(ms / (1000 * 60) % 60),
		Seconds: int(ms / 1000 % 60),
	}
}

// String renders the countdown the way event cards display it.
func (r Remaining) String() string {
	if r.Elapsed {
		return "Event Started"
	}
	return fmt.Sprintf("%dd %dh %dm %ds", r.Days, r.Hours, r.Minutes, r.Seconds)
}
