package availability

import "time"

// AvailableStarts returns the candidate start times, ascending, at which an
// appointment of the given duration fits entirely within the available
// points. A start is valid only when every one of its ceil(duration/interval)
// contiguous points is explicitly present; a gap in the grid means
// unavailable, the search never bridges it.
func AvailableStarts(points []time.Time, duration, interval time.Duration) []time.Time {
	if len(points) == 0 || duration <= 0 || interval <= 0 {
		return nil
	}
	required := int((duration + interval - 1) / interval)

	present := make(map[int64]bool, len(points))
	for _, p := range points {
		present[p.Unix()] = true
	}

	var starts []time.Time
	for _, p := range points {
		ok := true
		for i := 1; i < required; i++ {
			if !present[p.Add(time.Duration(i)*interval).Unix()] {
				ok = false
				break
			}
		}
		if ok {
			starts = append(starts, p)
		}
	}
	return starts
}
