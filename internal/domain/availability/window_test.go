package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/clinicops/internal/domain/branch"
	"github.com/clinicops/clinicops/internal/domain/catalog"
)

type mockServiceSource struct {
	services map[uuid.UUID]*catalog.Service
}

func (m *mockServiceSource) ServicesByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Service, error) {
	var out []*catalog.Service
	for _, id := range ids {
		if s, ok := m.services[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockGroupSource struct {
	groups map[uuid.UUID]*catalog.ServiceGroup
}

func (m *mockGroupSource) GroupsByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.ServiceGroup, error) {
	var out []*catalog.ServiceGroup
	for _, id := range ids {
		if g, ok := m.groups[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

type mockBranchSource struct {
	branches map[uuid.UUID]*branch.Branch
}

func (m *mockBranchSource) GetByID(_ context.Context, id uuid.UUID) (*branch.Branch, error) {
	if b, ok := m.branches[id]; ok {
		return b, nil
	}
	return nil, context.Canceled
}

type mockOnsiteSource struct {
	windows map[uuid.UUID]*catalog.OnsiteBranch
}

func (m *mockOnsiteSource) GetByBranch(_ context.Context, branchID uuid.UUID) (*catalog.OnsiteBranch, error) {
	if o, ok := m.windows[branchID]; ok {
		return o, nil
	}
	return nil, context.Canceled
}

type windowFixture struct {
	services *mockServiceSource
	groups   *mockGroupSource
	branches *mockBranchSource
	onsite   *mockOnsiteSource
	resolver *WindowResolver
}

func newWindowFixture() *windowFixture {
	f := &windowFixture{
		services: &mockServiceSource{services: make(map[uuid.UUID]*catalog.Service)},
		groups:   &mockGroupSource{groups: make(map[uuid.UUID]*catalog.ServiceGroup)},
		branches: &mockBranchSource{branches: make(map[uuid.UUID]*branch.Branch)},
		onsite:   &mockOnsiteSource{windows: make(map[uuid.UUID]*catalog.OnsiteBranch)},
	}
	f.resolver = NewWindowResolver(f.services, f.groups, f.branches, f.onsite, 6)
	return f
}

func (f *windowFixture) addBranch(typ branch.BranchType) uuid.UUID {
	id := uuid.New()
	f.branches.branches[id] = &branch.Branch{ID: id, Type: typ}
	return id
}

func (f *windowFixture) addService(aheadDays int, g *catalog.ServiceGroup) uuid.UUID {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	f.groups.groups[g.ID] = g
	id := uuid.New()
	f.services.services[id] = &catalog.Service{ID: id, GroupID: g.ID, MinBookingAheadDays: aheadDays}
	return id
}

func TestMinMaxDefaultWindow(t *testing.T) {
	f := newWindowFixture()
	branchID := f.addBranch(branch.TypePermanent)
	svcID := f.addService(2, &catalog.ServiceGroup{DurationMinutes: 30})

	ref := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC) // Monday 10:00
	min, max, err := f.resolver.MinMaxBookingDates(context.Background(), ref, []uuid.UUID{svcID}, branchID)
	if err != nil {
		t.Fatalf("MinMaxBookingDates() error = %v", err)
	}

	wantMin := time.Date(2026, 1, 7, 11, 0, 0, 0, time.UTC) // Wed 11:00: 2 days + 1h buffer
	if !min.Equal(wantMin) {
		t.Errorf("min = %v, want %v", min, wantMin)
	}
	wantMax := time.Date(2026, 7, 5, 23, 59, 59, 0, time.UTC)
	if !max.Equal(wantMax) {
		t.Errorf("max = %v, want %v", max, wantMax)
	}
}

func TestMinMaxUsesLargestLeadTime(t *testing.T) {
	f := newWindowFixture()
	branchID := f.addBranch(branch.TypePermanent)
	g := &catalog.ServiceGroup{DurationMinutes: 30}
	quick := f.addService(0, g)
	slow := f.addService(5, &catalog.ServiceGroup{DurationMinutes: 15})

	ref := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	min, _, err := f.resolver.MinMaxBookingDates(context.Background(), ref, []uuid.UUID{quick, slow}, branchID)
	if err != nil {
		t.Fatal(err)
	}
	if want := ref.AddDate(0, 0, 5).Add(time.Hour); !min.Equal(want) {
		t.Errorf("min = %v, want %v", min, want)
	}
}

func TestMinMaxGroupWindowTightensBounds(t *testing.T) {
	f := newWindowFixture()
	branchID := f.addBranch(branch.TypePermanent)
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svcID := f.addService(0, &catalog.ServiceGroup{DurationMinutes: 30, StartDate: &start, EndDate: &end})

	ref := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	min, max, err := f.resolver.MinMaxBookingDates(context.Background(), ref, []uuid.UUID{svcID}, branchID)
	if err != nil {
		t.Fatal(err)
	}
	if !min.Equal(start) {
		t.Errorf("min = %v, want group start %v", min, start)
	}
	if want := endOfDay(end); !max.Equal(want) {
		t.Errorf("max = %v, want group end clamped to %v", max, want)
	}
}

func TestMinMaxOnsiteWindowWinsWhenTighter(t *testing.T) {
	f := newWindowFixture()
	branchID := f.addBranch(branch.TypeOnsite)
	groupEnd := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) // D1
	svcID := f.addService(0, &catalog.ServiceGroup{DurationMinutes: 30, EndDate: &groupEnd})

	onsiteEnd := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) // D2 < D1
	f.onsite.windows[branchID] = &catalog.OnsiteBranch{
		BranchID:  branchID,
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   onsiteEnd,
	}

	ref := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	min, max, err := f.resolver.MinMaxBookingDates(context.Background(), ref, []uuid.UUID{svcID}, branchID)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC); !min.Equal(want) {
		t.Errorf("min = %v, want onsite start %v", min, want)
	}
	if want := endOfDay(onsiteEnd); !max.Equal(want) {
		t.Errorf("max = %v, want the tighter onsite end %v, never the group end", max, want)
	}
}

func TestMinMaxIgnoresCorporateCodeValidity(t *testing.T) {
	f := newWindowFixture()
	branchID := f.addBranch(branch.TypePermanent)
	// The group is gated by a corporate code whose validity ends long before
	// the horizon. The code gates unlock, not the bookable range.
	codeID := uuid.New()
	svcID := f.addService(0, &catalog.ServiceGroup{DurationMinutes: 30, CorporateCodeID: &codeID})

	ref := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	_, max, err := f.resolver.MinMaxBookingDates(context.Background(), ref, []uuid.UUID{svcID}, branchID)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 7, 5, 23, 59, 59, 0, time.UTC); !max.Equal(want) {
		t.Errorf("max = %v, want the plain 6-month horizon %v", max, want)
	}
}

func TestMinMaxPastGroupDatesIgnored(t *testing.T) {
	f := newWindowFixture()
	branchID := f.addBranch(branch.TypePermanent)
	// Both dates precede ref; neither may move the bounds.
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svcID := f.addService(0, &catalog.ServiceGroup{DurationMinutes: 30, StartDate: &start, EndDate: &end})

	ref := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	min, max, err := f.resolver.MinMaxBookingDates(context.Background(), ref, []uuid.UUID{svcID}, branchID)
	if err != nil {
		t.Fatal(err)
	}
	if want := ref.Add(time.Hour); !min.Equal(want) {
		t.Errorf("min = %v, want %v", min, want)
	}
	if want := time.Date(2026, 7, 5, 23, 59, 59, 0, time.UTC); !max.Equal(want) {
		t.Errorf("max = %v, want %v", max, want)
	}
}

func TestMinMaxUnknownServiceRejected(t *testing.T) {
	f := newWindowFixture()
	branchID := f.addBranch(branch.TypePermanent)

	ref := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	if _, _, err := f.resolver.MinMaxBookingDates(context.Background(), ref, []uuid.UUID{uuid.New()}, branchID); err == nil {
		t.Fatal("expected error for unknown service id")
	}
}
