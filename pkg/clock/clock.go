package clock

import "time"

// Clock provides the current time and calendar date. Every component that
// stamps dates or computes batch age depends on this interface so tests can
// freeze time.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type systemClock struct {
	loc *time.Location
}

// System returns a Clock backed by the real time in the given location.
// A nil location defaults to time.Local.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return &systemClock{loc: loc}
}

func (c *systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *systemClock) Today() time.Time {
	return Date(c.Now())
}

type fixedClock struct {
	now time.Time
}

// Fixed returns a Clock frozen at the given instant.
func Fixed(t time.Time) Clock {
	return &fixedClock{now: t}
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func (c *fixedClock) Today() time.Time {
	return Date(c.now)
}

// Date truncates an instant to its calendar date (midnight, same location).
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
