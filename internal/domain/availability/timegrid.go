// Package availability computes bookable appointment slots for a branch:
// discrete time-grid arithmetic, operating-hour resolution against the
// exception calendar, booking-window derivation, and the booked-slot ledger
// that keeps capacity honest under concurrent bookings.
package availability

import "time"

// Discretize returns the ascending time points at interval multiples,
// anchored to midnight, covering [start, end). The start is snapped backward
// to the nearest boundary, so the first point may precede start; callers
// intersect against operating-hour boundaries afterward. end itself is never
// emitted.
func Discretize(start, end time.Time, interval time.Duration) []time.Time {
	if interval <= 0 || !start.Before(end) {
		return nil
	}
	// Snap by civil time-of-day, not epoch offset, so the grid stays anchored
	// to local midnight in zones with non-whole-hour UTC offsets.
	sinceMidnight := time.Duration(start.Hour())*time.Hour +
		time.Duration(start.Minute())*time.Minute +
		time.Duration(start.Second())*time.Second +
		time.Duration(start.Nanosecond())
	t := start.Add(-(sinceMidnight % interval))

	var points []time.Time
	for t.Before(end) {
		points = append(points, t)
		t = t.Add(interval)
	}
	return points
}

// discretizeMinutes is the minute-of-day analogue used when resolving weekly
// operating-hour templates. [startMin, endMin) half-open, start snapped
// backward to a multiple of intervalMin.
func discretizeMinutes(startMin, endMin, intervalMin int) []int {
	if intervalMin <= 0 || startMin >= endMin {
		return nil
	}
	m := startMin - startMin%intervalMin
	var points []int
	for ; m < endMin; m += intervalMin {
		points = append(points, m)
	}
	return points
}

// atMinute projects a minute-of-day onto a calendar date.
func atMinute(date time.Time, minute int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, minute/60, minute%60, 0, 0, date.Location())
}

// startOfDay truncates to local midnight.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// endOfDay is 23:59:59 of t's calendar day.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
