package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/clinicops/internal/domain/branch"
	"github.com/clinicops/clinicops/internal/domain/calendar"
	"github.com/clinicops/clinicops/internal/platform/cache"
)

type mockHoursSource struct {
	hours []*branch.OperatingHour
	calls int
}

func (m *mockHoursSource) OperatingHoursByBranch(_ context.Context, _ uuid.UUID) ([]*branch.OperatingHour, error) {
	m.calls++
	return m.hours, nil
}

type mockApptHoursSource struct {
	hours []*branch.AppointmentOperatingHour
}

func (m *mockApptHoursSource) AppointmentHoursByBranch(_ context.Context, _ uuid.UUID) ([]*branch.AppointmentOperatingHour, error) {
	return m.hours, nil
}

type mockHolidaySource struct {
	holidays []*calendar.PublicHoliday
}

func (m *mockHolidaySource) HolidaysInRange(_ context.Context, _, _ time.Time) ([]*calendar.PublicHoliday, error) {
	return m.holidays, nil
}

type mockBlockoffSource struct {
	blocks []*calendar.Blockoff
}

func (m *mockBlockoffSource) BlockoffsInRange(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]*calendar.Blockoff, error) {
	return m.blocks, nil
}

type resolverFixture struct {
	hours     *mockHoursSource
	apptHours *mockApptHoursSource
	holidays  *mockHolidaySource
	blockoffs *mockBlockoffSource
	resolver  *HoursResolver
}

func newResolverFixture() *resolverFixture {
	f := &resolverFixture{
		hours:     &mockHoursSource{},
		apptHours: &mockApptHoursSource{},
		holidays:  &mockHolidaySource{},
		blockoffs: &mockBlockoffSource{},
	}
	f.resolver = NewHoursResolver(f.hours, f.apptHours, f.holidays, f.blockoffs,
		cache.NewMemory(16, time.Minute), 15*time.Minute)
	return f
}

func (f *resolverFixture) openMonday(startMin, endMin, maxBookings int) {
	f.hours.hours = append(f.hours.hours, &branch.OperatingHour{
		Day: branch.Monday, StartMinute: startMin, EndMinute: endMin,
	})
	f.apptHours.hours = append(f.apptHours.hours, &branch.AppointmentOperatingHour{
		Day: branch.Monday, StartMinute: startMin, EndMinute: endMin, MaxBookings: maxBookings,
	})
}

var testMonday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func resolveMonday(t *testing.T, f *resolverFixture) ([]time.Time, map[time.Time]int) {
	t.Helper()
	points, capacity, err := f.resolver.OperatingHours(context.Background(), uuid.New(),
		testMonday, endOfDay(testMonday))
	if err != nil {
		t.Fatalf("OperatingHours() error = %v", err)
	}
	return points, capacity
}

func TestOperatingHoursBasicDay(t *testing.T) {
	f := newResolverFixture()
	f.openMonday(540, 720, 1) // 09:00-12:00

	points, capacity := resolveMonday(t, f)
	if len(points) != 12 {
		t.Fatalf("len(points) = %d, want 12", len(points))
	}
	if want := atMinute(testMonday, 540); !points[0].Equal(want) {
		t.Errorf("first point = %v, want %v", points[0], want)
	}
	if want := atMinute(testMonday, 705); !points[len(points)-1].Equal(want) {
		t.Errorf("last point = %v, want %v", points[len(points)-1], want)
	}
	for _, p := range points {
		if capacity[p] != 1 {
			t.Errorf("capacity[%v] = %d, want 1", p, capacity[p])
		}
	}
}

func TestOperatingHoursIntersection(t *testing.T) {
	f := newResolverFixture()
	// Branch generally open 09:00-12:00, appointment hours claim 08:00-13:00.
	f.hours.hours = []*branch.OperatingHour{
		{Day: branch.Monday, StartMinute: 540, EndMinute: 720},
	}
	f.apptHours.hours = []*branch.AppointmentOperatingHour{
		{Day: branch.Monday, StartMinute: 480, EndMinute: 780, MaxBookings: 2},
	}

	points, _ := resolveMonday(t, f)
	if len(points) != 12 {
		t.Fatalf("len(points) = %d, want 12 (appointment slots cannot exist outside general hours)", len(points))
	}
	if !points[0].Equal(atMinute(testMonday, 540)) {
		t.Errorf("first point = %v, want 09:00", points[0])
	}
}

func TestOperatingHoursCutoffTrimsEnd(t *testing.T) {
	f := newResolverFixture()
	f.hours.hours = []*branch.OperatingHour{
		{Day: branch.Monday, StartMinute: 540, EndMinute: 720, CutoffMinutes: 30},
	}
	f.apptHours.hours = []*branch.AppointmentOperatingHour{
		{Day: branch.Monday, StartMinute: 540, EndMinute: 720, MaxBookings: 1},
	}

	points, _ := resolveMonday(t, f)
	// General window ends at 11:30 after cutoff, so 11:30 and 11:45 are gone.
	if want := atMinute(testMonday, 675); !points[len(points)-1].Equal(want) {
		t.Errorf("last point = %v, want %v", points[len(points)-1], want)
	}
}

func TestOperatingHoursBlockoffSubtraction(t *testing.T) {
	f := newResolverFixture()
	f.openMonday(540, 720, 1)
	f.blockoffs.blocks = []*calendar.Blockoff{
		{Date: testMonday, StartMinute: 600, EndMinute: 630, Enabled: true}, // 10:00-10:30
	}

	points, _ := resolveMonday(t, f)
	if len(points) != 10 {
		t.Fatalf("len(points) = %d, want 10", len(points))
	}
	for _, p := range points {
		if p.Equal(atMinute(testMonday, 600)) || p.Equal(atMinute(testMonday, 615)) {
			t.Errorf("blocked point %v still present", p)
		}
	}
}

func TestBlockoffNeverIncreasesAvailability(t *testing.T) {
	f := newResolverFixture()
	f.openMonday(540, 720, 1)
	before, _ := resolveMonday(t, f)

	f2 := newResolverFixture()
	f2.openMonday(540, 720, 1)
	f2.blockoffs.blocks = []*calendar.Blockoff{
		{Date: testMonday, StartMinute: 540, EndMinute: 570, Enabled: true},
	}
	after, _ := resolveMonday(t, f2)

	if len(after) > len(before) {
		t.Fatalf("blockoff grew availability: %d > %d", len(after), len(before))
	}
	beforeSet := make(map[int64]bool)
	for _, p := range before {
		beforeSet[p.Unix()] = true
	}
	for _, p := range after {
		if !beforeSet[p.Unix()] {
			t.Errorf("point %v appeared after adding a blockoff", p)
		}
	}
}

func TestOperatingHoursHolidaySubstitution(t *testing.T) {
	f := newResolverFixture()
	f.openMonday(540, 720, 1)
	// Holiday hours 10:00-11:00 replace the Monday window entirely.
	f.hours.hours = append(f.hours.hours, &branch.OperatingHour{
		Day: branch.PublicHoliday, StartMinute: 600, EndMinute: 660,
	})
	f.apptHours.hours = append(f.apptHours.hours, &branch.AppointmentOperatingHour{
		Day: branch.PublicHoliday, StartMinute: 600, EndMinute: 660, MaxBookings: 1,
	})
	f.holidays.holidays = []*calendar.PublicHoliday{{Date: testMonday, Remarks: "New Year observed"}}

	points, _ := resolveMonday(t, f)
	if len(points) != 4 {
		t.Fatalf("len(points) = %d, want 4 (holiday window only)", len(points))
	}
	if !points[0].Equal(atMinute(testMonday, 600)) {
		t.Errorf("first point = %v, want 10:00", points[0])
	}
}

func TestOperatingHoursNoConfigMeansClosed(t *testing.T) {
	f := newResolverFixture()
	// Appointment hours with no matching general hours contribute nothing.
	f.apptHours.hours = []*branch.AppointmentOperatingHour{
		{Day: branch.Monday, StartMinute: 540, EndMinute: 720, MaxBookings: 1},
	}

	points, _ := resolveMonday(t, f)
	if len(points) != 0 {
		t.Errorf("len(points) = %d, want 0", len(points))
	}
}

func TestOperatingHoursOverlappingCapacityKeepsHighest(t *testing.T) {
	f := newResolverFixture()
	f.hours.hours = []*branch.OperatingHour{
		{Day: branch.Monday, StartMinute: 540, EndMinute: 720},
	}
	f.apptHours.hours = []*branch.AppointmentOperatingHour{
		{Day: branch.Monday, StartMinute: 540, EndMinute: 720, MaxBookings: 1},
		{Day: branch.Monday, StartMinute: 600, EndMinute: 660, MaxBookings: 3},
	}

	_, capacity := resolveMonday(t, f)
	if got := capacity[atMinute(testMonday, 600)]; got != 3 {
		t.Errorf("overlap capacity = %d, want 3", got)
	}
	if got := capacity[atMinute(testMonday, 540)]; got != 1 {
		t.Errorf("non-overlap capacity = %d, want 1", got)
	}
}

func TestOperatingHoursCached(t *testing.T) {
	f := newResolverFixture()
	f.openMonday(540, 720, 1)
	branchID := uuid.New()

	ctx := context.Background()
	first, _, err := f.resolver.OperatingHours(ctx, branchID, testMonday, endOfDay(testMonday))
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := f.resolver.OperatingHours(ctx, branchID, testMonday, endOfDay(testMonday))
	if err != nil {
		t.Fatal(err)
	}
	if f.hours.calls != 1 {
		t.Errorf("source queried %d times, want 1 (second call served from cache)", f.hours.calls)
	}
	if len(first) != len(second) {
		t.Errorf("cached result differs: %d vs %d points", len(first), len(second))
	}
}
