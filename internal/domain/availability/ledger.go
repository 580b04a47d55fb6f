package availability

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// TimeChange is one pending ledger delta for a discrete time point.
type TimeChange struct {
	SGiMedBranchID   string
	SGiMedCalendarID string
	At               time.Time
	Delta            int
}

// ComputeTimeChanges discretizes an appointment's [start, end) into per-point
// ledger deltas: +1 per point while active, -1 when cancelled. The start
// snaps backward to the grid boundary exactly as availability reads do, so
// writes and reads always touch the same points.
func ComputeTimeChanges(sgimedBranchID, sgimedCalendarID string, start, end time.Time, interval time.Duration, cancelled bool) []TimeChange {
	delta := 1
	if cancelled {
		delta = -1
	}
	points := Discretize(start, end, interval)
	changes := make([]TimeChange, 0, len(points))
	for _, p := range points {
		changes = append(changes, TimeChange{
			SGiMedBranchID:   sgimedBranchID,
			SGiMedCalendarID: sgimedCalendarID,
			At:               p,
			Delta:            delta,
		})
	}
	return changes
}

type ledgerKey struct {
	branchID   string
	calendarID string
	at         int64
}

// SumTimeChanges collapses deltas that target the same (branch, calendar,
// time) key into one change. Applying raw per-appointment deltas separately
// within one logical operation risks lost updates when a reschedule's old and
// new intervals overlap.
func SumTimeChanges(changes []TimeChange) []TimeChange {
	summed := make(map[ledgerKey]TimeChange, len(changes))
	var order []ledgerKey
	for _, c := range changes {
		k := ledgerKey{c.SGiMedBranchID, c.SGiMedCalendarID, c.At.Unix()}
		existing, ok := summed[k]
		if !ok {
			order = append(order, k)
			summed[k] = c
			continue
		}
		existing.Delta += c.Delta
		summed[k] = existing
	}
	out := make([]TimeChange, 0, len(order))
	for _, k := range order {
		if c := summed[k]; c.Delta != 0 {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// Ledger maintains the denormalized per-slot appointment counts. It is the
// only mutable shared state in the availability core; all writers go through
// the repository's conditional increments so capacity checks are atomic per
// key.
type Ledger struct {
	repo LedgerRepository
}

func NewLedger(repo LedgerRepository) *Ledger { return &Ledger{repo: repo} }

// ApplyTimeChanges sums the pending changes and applies each against the
// ledger. Increments carry the slot's capacity into a conditional write;
// a write that would exceed capacity fails the whole operation with
// ErrSlotFull. capacity maps each time point to its max bookings; a point
// missing from the map has no bookable capacity at all.
//
// Callers run this inside the same transaction as the appointment state
// change, so a failed increment rolls everything back.
func (l *Ledger) ApplyTimeChanges(ctx context.Context, changes []TimeChange, capacity map[time.Time]int) error {
	for _, c := range SumTimeChanges(changes) {
		switch {
		case c.Delta > 0:
			max, ok := capacityAt(capacity, c.At)
			if !ok || max < 1 {
				return fmt.Errorf("%w: %s", ErrSlotFull, c.At.Format(time.RFC3339))
			}
			if err := l.repo.Increment(ctx, c.SGiMedBranchID, c.SGiMedCalendarID, c.At, c.Delta, max); err != nil {
				return err
			}
		case c.Delta < 0:
			if err := l.repo.Decrement(ctx, c.SGiMedBranchID, c.SGiMedCalendarID, c.At, -c.Delta); err != nil {
				return err
			}
		}
	}
	return nil
}

// capacityAt tolerates capacity maps built in a different time.Location than
// the change's points by falling back to an instant-equality scan.
func capacityAt(capacity map[time.Time]int, at time.Time) (int, bool) {
	if max, ok := capacity[at]; ok {
		return max, true
	}
	for t, max := range capacity {
		if t.Equal(at) {
			return max, true
		}
	}
	return 0, false
}

// BookedSlots reports which of the given time points have reached capacity.
// It prefilters ledger rows by the minimum capacity across the range, then
// rechecks each candidate against its own slot's capacity only when the
// range mixes capacities.
func (l *Ledger) BookedSlots(ctx context.Context, sgimedBranchID, sgimedCalendarID string, from, to time.Time, points []time.Time, capacity map[time.Time]int) (map[time.Time]bool, error) {
	if len(points) == 0 {
		return map[time.Time]bool{}, nil
	}

	minCap, homogeneous := 0, true
	for i, p := range points {
		c := capacity[p]
		if i == 0 {
			minCap = c
			continue
		}
		if c != minCap {
			homogeneous = false
			if c < minCap {
				minCap = c
			}
		}
	}

	counts, err := l.repo.CountsAtLeast(ctx, sgimedBranchID, sgimedCalendarID, from, to, minCap)
	if err != nil {
		return nil, fmt.Errorf("load slot counts: %w", err)
	}

	booked := make(map[time.Time]bool)
	for _, p := range points {
		count, ok := countAt(counts, p)
		if !ok {
			continue
		}
		if homogeneous || count >= capacity[p] {
			booked[p] = true
		}
	}
	return booked, nil
}

func countAt(counts map[time.Time]int, at time.Time) (int, bool) {
	if c, ok := counts[at]; ok {
		return c, true
	}
	for t, c := range counts {
		if t.Equal(at) {
			return c, true
		}
	}
	return 0, false
}
