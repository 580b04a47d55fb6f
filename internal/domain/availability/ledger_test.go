package availability

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// mockLedgerRepo mirrors the conditional-write semantics of the Postgres
// repository: increments fail atomically when they would exceed max.
type mockLedgerRepo struct {
	counts map[string]int
}

func newMockLedgerRepo() *mockLedgerRepo {
	return &mockLedgerRepo{counts: make(map[string]int)}
}

func slotKey(branchID, calendarID string, at time.Time) string {
	return fmt.Sprintf("%s|%s|%d", branchID, calendarID, at.Unix())
}

func (m *mockLedgerRepo) Increment(_ context.Context, branchID, calendarID string, at time.Time, delta, max int) error {
	k := slotKey(branchID, calendarID, at)
	if m.counts[k]+delta > max {
		return ErrSlotFull
	}
	m.counts[k] += delta
	return nil
}

func (m *mockLedgerRepo) Decrement(_ context.Context, branchID, calendarID string, at time.Time, delta int) error {
	k := slotKey(branchID, calendarID, at)
	m.counts[k] -= delta
	if m.counts[k] < 0 {
		m.counts[k] = 0
	}
	return nil
}

func (m *mockLedgerRepo) CountsAtLeast(_ context.Context, branchID, calendarID string, from, to time.Time, min int) (map[time.Time]int, error) {
	out := make(map[time.Time]int)
	for t := from; !t.After(to); t = t.Add(time.Minute) {
		if c, ok := m.counts[slotKey(branchID, calendarID, t)]; ok && c >= min {
			out[t] = c
		}
	}
	return out, nil
}

func TestComputeTimeChanges(t *testing.T) {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	changes := ComputeTimeChanges("B1", "C1", start, end, 15*time.Minute, false)
	if len(changes) != 2 {
		t.Fatalf("len(changes) = %d, want 2", len(changes))
	}
	for i, c := range changes {
		if c.Delta != 1 {
			t.Errorf("change %d delta = %d, want +1", i, c.Delta)
		}
	}

	cancelled := ComputeTimeChanges("B1", "C1", start, end, 15*time.Minute, true)
	for i, c := range cancelled {
		if c.Delta != -1 {
			t.Errorf("cancelled change %d delta = %d, want -1", i, c.Delta)
		}
	}
}

func TestSumTimeChangesCollapsesOverlap(t *testing.T) {
	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	next := at.Add(15 * time.Minute)

	// A reschedule shifting 09:00-09:30 to 09:15-09:45: the shared 09:15
	// point nets to zero and must not touch the database at all.
	changes := append(
		ComputeTimeChanges("B1", "C1", at, at.Add(30*time.Minute), 15*time.Minute, true),
		ComputeTimeChanges("B1", "C1", next, next.Add(30*time.Minute), 15*time.Minute, false)...,
	)

	summed := SumTimeChanges(changes)
	if len(summed) != 2 {
		t.Fatalf("len(summed) = %d, want 2 (shared point nets out)", len(summed))
	}
	for _, c := range summed {
		if c.At.Equal(next) {
			t.Errorf("netted-out point %v still present with delta %d", c.At, c.Delta)
		}
	}
}

func TestCapacityConservation(t *testing.T) {
	repo := newMockLedgerRepo()
	ledger := NewLedger(repo)
	ctx := context.Background()

	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	capacity := map[time.Time]int{at: 2}
	confirm := []TimeChange{{SGiMedBranchID: "B1", SGiMedCalendarID: "C1", At: at, Delta: 1}}

	for i := 0; i < 2; i++ {
		if err := ledger.ApplyTimeChanges(ctx, confirm, capacity); err != nil {
			t.Fatalf("confirmation %d error = %v", i+1, err)
		}
	}
	if err := ledger.ApplyTimeChanges(ctx, confirm, capacity); !errors.Is(err, ErrSlotFull) {
		t.Fatalf("third confirmation error = %v, want ErrSlotFull", err)
	}

	// A cancellation frees the slot again.
	cancel := []TimeChange{{SGiMedBranchID: "B1", SGiMedCalendarID: "C1", At: at, Delta: -1}}
	if err := ledger.ApplyTimeChanges(ctx, cancel, capacity); err != nil {
		t.Fatal(err)
	}
	if err := ledger.ApplyTimeChanges(ctx, confirm, capacity); err != nil {
		t.Fatalf("post-cancel confirmation error = %v", err)
	}
}

func TestApplyRejectsPointWithoutCapacity(t *testing.T) {
	ledger := NewLedger(newMockLedgerRepo())
	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	confirm := []TimeChange{{SGiMedBranchID: "B1", SGiMedCalendarID: "C1", At: at, Delta: 1}}

	err := ledger.ApplyTimeChanges(context.Background(), confirm, map[time.Time]int{})
	if !errors.Is(err, ErrSlotFull) {
		t.Fatalf("error = %v, want ErrSlotFull for uncovered point", err)
	}
}

func TestBookedSlotsHomogeneousCapacity(t *testing.T) {
	repo := newMockLedgerRepo()
	ledger := NewLedger(repo)
	ctx := context.Background()

	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	points := gridPoints(day, 540, 600, 15)
	capacity := make(map[time.Time]int)
	for _, p := range points {
		capacity[p] = 1
	}

	full := atMinute(day, 555)
	repo.counts[slotKey("B1", "C1", full)] = 1

	booked, err := ledger.BookedSlots(ctx, "B1", "C1", day, endOfDay(day), points, capacity)
	if err != nil {
		t.Fatal(err)
	}
	if len(booked) != 1 || !booked[full] {
		t.Errorf("booked = %v, want only %v", booked, full)
	}
}

func TestBookedSlotsHeterogeneousCapacityRecheck(t *testing.T) {
	repo := newMockLedgerRepo()
	ledger := NewLedger(repo)
	ctx := context.Background()

	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	lowCap := atMinute(day, 540)  // capacity 1
	highCap := atMinute(day, 555) // capacity 3
	points := []time.Time{lowCap, highCap}
	capacity := map[time.Time]int{lowCap: 1, highCap: 3}

	// Both slots carry one booking: the low-capacity slot is full, the
	// high-capacity slot survives the minimum-capacity prefilter but must be
	// cleared by the precise recheck.
	repo.counts[slotKey("B1", "C1", lowCap)] = 1
	repo.counts[slotKey("B1", "C1", highCap)] = 1

	booked, err := ledger.BookedSlots(ctx, "B1", "C1", day, endOfDay(day), points, capacity)
	if err != nil {
		t.Fatal(err)
	}
	if !booked[lowCap] {
		t.Error("low-capacity slot at count 1 should be booked")
	}
	if booked[highCap] {
		t.Error("high-capacity slot at count 1 must not be booked")
	}
}

func TestBookedSlotsIgnoresRowsOutsidePointSet(t *testing.T) {
	repo := newMockLedgerRepo()
	ledger := NewLedger(repo)

	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	points := []time.Time{atMinute(day, 540)}
	capacity := map[time.Time]int{points[0]: 1}

	// Stale ledger row at a time no longer in the available set.
	repo.counts[slotKey("B1", "C1", atMinute(day, 720))] = 5

	booked, err := ledger.BookedSlots(context.Background(), "B1", "C1", day, endOfDay(day), points, capacity)
	if err != nil {
		t.Fatal(err)
	}
	if len(booked) != 0 {
		t.Errorf("booked = %v, want empty", booked)
	}
}
