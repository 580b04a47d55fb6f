package calendar

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/clinicops/internal/domain/branch"
	"github.com/clinicops/clinicops/internal/platform/clock"
)

// -- Mock Repositories --

type mockHolidayRepo struct {
	holidays map[uuid.UUID]*PublicHoliday
}

func newMockHolidayRepo() *mockHolidayRepo {
	return &mockHolidayRepo{holidays: make(map[uuid.UUID]*PublicHoliday)}
}

func (m *mockHolidayRepo) Create(_ context.Context, h *PublicHoliday) error {
	h.ID = uuid.New()
	m.holidays[h.ID] = h
	return nil
}

func (m *mockHolidayRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.holidays, id)
	return nil
}

func (m *mockHolidayRepo) List(_ context.Context, limit, offset int) ([]*PublicHoliday, int, error) {
	var result []*PublicHoliday
	for _, h := range m.holidays {
		result = append(result, h)
	}
	return result, len(result), nil
}

func (m *mockHolidayRepo) HolidaysInRange(_ context.Context, from, to time.Time) ([]*PublicHoliday, error) {
	var result []*PublicHoliday
	for _, h := range m.holidays {
		if !h.Date.Before(from) && !h.Date.After(to) {
			result = append(result, h)
		}
	}
	return result, nil
}

type mockBlockoffRepo struct {
	blockoffs map[uuid.UUID]*Blockoff
}

func newMockBlockoffRepo() *mockBlockoffRepo {
	return &mockBlockoffRepo{blockoffs: make(map[uuid.UUID]*Blockoff)}
}

func (m *mockBlockoffRepo) Create(_ context.Context, b *Blockoff) error {
	b.ID = uuid.New()
	m.blockoffs[b.ID] = b
	return nil
}

func (m *mockBlockoffRepo) GetByID(_ context.Context, id uuid.UUID) (*Blockoff, error) {
	b, ok := m.blockoffs[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return b, nil
}

func (m *mockBlockoffRepo) Update(_ context.Context, b *Blockoff) error {
	m.blockoffs[b.ID] = b
	return nil
}

func (m *mockBlockoffRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if b, ok := m.blockoffs[id]; ok {
		b.Deleted = true
	}
	return nil
}

func (m *mockBlockoffRepo) List(_ context.Context, limit, offset int) ([]*Blockoff, int, error) {
	var result []*Blockoff
	for _, b := range m.blockoffs {
		if !b.Deleted {
			result = append(result, b)
		}
	}
	return result, len(result), nil
}

func (m *mockBlockoffRepo) BlockoffsInRange(_ context.Context, branchID uuid.UUID, from, to time.Time) ([]*Blockoff, error) {
	var result []*Blockoff
	for _, b := range m.blockoffs {
		if !b.Enabled || b.Deleted {
			continue
		}
		for _, id := range b.BranchIDs {
			if id == branchID && !b.Date.Before(from) && !b.Date.After(to) {
				result = append(result, b)
			}
		}
	}
	return result, nil
}

type mockHoursSource struct {
	hours map[uuid.UUID][]*branch.OperatingHour
}

func (m *mockHoursSource) OperatingHoursByBranch(_ context.Context, branchID uuid.UUID) ([]*branch.OperatingHour, error) {
	return m.hours[branchID], nil
}

// -- Tests --

func TestCreateBlockoffValidation(t *testing.T) {
	svc := NewService(newMockHolidayRepo(), newMockBlockoffRepo(), &mockHoursSource{}, clock.Fixed(time.Now()))
	ctx := context.Background()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if err := svc.CreateBlockoff(ctx, &Blockoff{Date: date, StartMinute: 600, EndMinute: 630}); err == nil {
		t.Error("expected error when no branches linked")
	}
	if err := svc.CreateBlockoff(ctx, &Blockoff{Date: date, BranchIDs: []uuid.UUID{uuid.New()}, StartMinute: 630, EndMinute: 600}); err == nil {
		t.Error("expected error for inverted range")
	}

	b := &Blockoff{Date: date, BranchIDs: []uuid.UUID{uuid.New()}, StartMinute: 600, EndMinute: 630}
	if err := svc.CreateBlockoff(ctx, b); err != nil {
		t.Fatalf("CreateBlockoff: %v", err)
	}
	if !b.Enabled || b.Deleted {
		t.Error("new blockoff should start enabled and not deleted")
	}
}

func TestToggleOnRangesToCurrentWindow(t *testing.T) {
	branchID := uuid.New()
	// Tuesday 2026-03-03, 10:20 local.
	now := time.Date(2026, 3, 3, 10, 20, 0, 0, time.UTC)
	hours := &mockHoursSource{hours: map[uuid.UUID][]*branch.OperatingHour{
		branchID: {
			{BranchID: branchID, Day: branch.Tuesday, StartMinute: 540, EndMinute: 1080},
		},
	}}
	blockoffs := newMockBlockoffRepo()
	svc := NewService(newMockHolidayRepo(), blockoffs, hours, clock.Fixed(now))
	ctx := context.Background()

	b := &Blockoff{
		Date:        time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		BranchIDs:   []uuid.UUID{branchID},
		StartMinute: 540, EndMinute: 1080,
		AllowToggle: true,
	}
	if err := blockoffs.Create(ctx, b); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Toggle(ctx, b.ID, true)
	if err != nil {
		t.Fatalf("Toggle on: %v", err)
	}
	if got.StartMinute != 10*60+20 {
		t.Errorf("StartMinute = %d, want %d", got.StartMinute, 10*60+20)
	}
	if got.EndMinute != 1080 {
		t.Errorf("EndMinute = %d, want 1080 (end of current window)", got.EndMinute)
	}
	if !got.Enabled {
		t.Error("toggled-on blockoff should be enabled")
	}

	got, err = svc.Toggle(ctx, b.ID, false)
	if err != nil {
		t.Fatalf("Toggle off: %v", err)
	}
	if got.Enabled {
		t.Error("toggled-off blockoff should be disabled")
	}
}

func TestToggleOnDuringHolidayWindow(t *testing.T) {
	branchID := uuid.New()
	// Monday 2026-03-02 is a public holiday; the branch runs a reduced
	// 10:00-11:00 holiday window instead of its regular Monday hours.
	now := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	hours := &mockHoursSource{hours: map[uuid.UUID][]*branch.OperatingHour{
		branchID: {
			{BranchID: branchID, Day: branch.Monday, StartMinute: 540, EndMinute: 1080},
			{BranchID: branchID, Day: branch.PublicHoliday, StartMinute: 600, EndMinute: 660},
		},
	}}
	holidays := newMockHolidayRepo()
	if err := holidays.Create(context.Background(), &PublicHoliday{
		Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatal(err)
	}
	blockoffs := newMockBlockoffRepo()
	svc := NewService(holidays, blockoffs, hours, clock.Fixed(now))
	ctx := context.Background()

	b := &Blockoff{
		Date:        time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		BranchIDs:   []uuid.UUID{branchID},
		StartMinute: 600, EndMinute: 660,
		AllowToggle: true,
	}
	if err := blockoffs.Create(ctx, b); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Toggle(ctx, b.ID, true)
	if err != nil {
		t.Fatalf("Toggle on during holiday window: %v", err)
	}
	if got.EndMinute != 660 {
		t.Errorf("EndMinute = %d, want 660 (end of holiday window)", got.EndMinute)
	}
	if got.StartMinute != 10*60+30 {
		t.Errorf("StartMinute = %d, want %d", got.StartMinute, 10*60+30)
	}
}

func TestToggleRejectsNonToggleable(t *testing.T) {
	blockoffs := newMockBlockoffRepo()
	svc := NewService(newMockHolidayRepo(), blockoffs, &mockHoursSource{}, clock.Fixed(time.Now()))
	ctx := context.Background()

	b := &Blockoff{Date: time.Now(), BranchIDs: []uuid.UUID{uuid.New()}, StartMinute: 0, EndMinute: 60}
	if err := blockoffs.Create(ctx, b); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Toggle(ctx, b.ID, true); err == nil {
		t.Error("expected error toggling a non-toggle blockoff")
	}
}

func TestToggleOnOutsideOperatingHours(t *testing.T) {
	branchID := uuid.New()
	// Sunday, branch closed.
	now := time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)
	hours := &mockHoursSource{hours: map[uuid.UUID][]*branch.OperatingHour{
		branchID: {{BranchID: branchID, Day: branch.Monday, StartMinute: 540, EndMinute: 1080}},
	}}
	blockoffs := newMockBlockoffRepo()
	svc := NewService(newMockHolidayRepo(), blockoffs, hours, clock.Fixed(now))
	ctx := context.Background()

	b := &Blockoff{Date: now, BranchIDs: []uuid.UUID{branchID}, StartMinute: 540, EndMinute: 600, AllowToggle: true}
	if err := blockoffs.Create(ctx, b); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Toggle(ctx, b.ID, true); err == nil {
		t.Error("expected error toggling on while branch is closed")
	}
}
