// Package clock supplies the clinic chain's civil time. All slot arithmetic
// happens in one fixed timezone; computing availability in server-local time
// would shift operating-hour boundaries on hosts in other zones.
package clock

import "time"

// Clock yields the current time in the clinic timezone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type clinicClock struct {
	loc *time.Location
}

// New loads the named timezone (e.g. "Asia/Singapore").
func New(tz string) (Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	return &clinicClock{loc: loc}, nil
}

func (c *clinicClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c *clinicClock) Location() *time.Location { return c.loc }

// Fixed returns a clock pinned to a single instant. Test helper.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time           { return f.t }
func (f fixedClock) Location() *time.Location { return f.t.Location() }
