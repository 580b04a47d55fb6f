package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/clinicops/internal/domain/branch"
)

// minDateBuffer is added on top of the per-service lead time so a booking at
// the boundary still leaves an hour of slack.
const minDateBuffer = time.Hour

// WindowResolver derives the earliest and latest allowed appointment start
// for a selection of services at a branch.
type WindowResolver struct {
	services ServiceSource
	groups   GroupSource
	branches BranchSource
	onsite   OnsiteSource
	horizon  int // months
}

func NewWindowResolver(services ServiceSource, groups GroupSource,
	branches BranchSource, onsite OnsiteSource, horizonMonths int) *WindowResolver {
	return &WindowResolver{
		services: services,
		groups:   groups,
		branches: branches,
		onsite:   onsite,
		horizon:  horizonMonths,
	}
}

// MinMaxBookingDates computes the booking window for serviceIDs at branchID,
// anchored at ref. ref is "now" for a fresh booking and the appointment's
// original CreatedAt for a reschedule, so a reschedule keeps the window it
// was originally granted.
//
// min = ref + max(min_booking_ahead_days) + 1h; max = ref + horizon months.
// A service group's start_date can only raise min, its end_date only lower
// max, and only when the date is not already past. An onsite branch window
// intersects both bounds. Corporate-code validity is deliberately never
// consulted here: a code gates which groups can be unlocked, not how far
// ahead they can be booked. max is clamped to 23:59:59 of its resolved day.
//
// Conflicting constraints can invert the window; callers treat min > max as
// "no availability", not an error.
func (r *WindowResolver) MinMaxBookingDates(ctx context.Context, ref time.Time, serviceIDs []uuid.UUID, branchID uuid.UUID) (time.Time, time.Time, error) {
	services, err := r.services.ServicesByIDs(ctx, serviceIDs)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("load services: %w", err)
	}
	if len(services) != len(serviceIDs) {
		return time.Time{}, time.Time{}, fmt.Errorf("unknown service in selection")
	}

	aheadDays := 0
	groupIDs := make([]uuid.UUID, 0, len(services))
	seen := make(map[uuid.UUID]bool)
	for _, s := range services {
		if s.MinBookingAheadDays > aheadDays {
			aheadDays = s.MinBookingAheadDays
		}
		if !seen[s.GroupID] {
			seen[s.GroupID] = true
			groupIDs = append(groupIDs, s.GroupID)
		}
	}

	minDate := ref.AddDate(0, 0, aheadDays).Add(minDateBuffer)
	maxDate := ref.AddDate(0, r.horizon, 0)

	groups, err := r.groups.GroupsByIDs(ctx, groupIDs)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("load service groups: %w", err)
	}
	for _, g := range groups {
		if g.StartDate != nil && !g.StartDate.Before(ref) && g.StartDate.After(minDate) {
			minDate = *g.StartDate
		}
		if g.EndDate != nil && !g.EndDate.Before(ref) && g.EndDate.Before(maxDate) {
			maxDate = *g.EndDate
		}
	}

	b, err := r.branches.GetByID(ctx, branchID)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("load branch: %w", err)
	}
	if b.Type == branch.TypeOnsite {
		o, err := r.onsite.GetByBranch(ctx, branchID)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("load onsite window: %w", err)
		}
		if o.StartDate.After(minDate) {
			minDate = o.StartDate
		}
		if o.EndDate.Before(maxDate) {
			maxDate = o.EndDate
		}
	}

	return minDate, endOfDay(maxDate), nil
}
