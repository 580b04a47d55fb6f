package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service composes the window resolver, hours resolver, ledger and slot
// search into the availability queries the booking flow consumes.
type Service struct {
	branches BranchSource
	services ServiceSource
	groups   GroupSource
	resolver *HoursResolver
	window   *WindowResolver
	ledger   *Ledger
}

func NewService(branches BranchSource, services ServiceSource, groups GroupSource,
	resolver *HoursResolver, window *WindowResolver, ledger *Ledger) *Service {
	return &Service{
		branches: branches,
		services: services,
		groups:   groups,
		resolver: resolver,
		window:   window,
		ledger:   ledger,
	}
}

// Timings is the availability answer for one query window. Starts is empty,
// not an error, when nothing fits; MinDate and MaxDate are always populated
// so the caller can explain the constraint.
type Timings struct {
	MinDate time.Time   `json:"min_date"`
	MaxDate time.Time   `json:"max_date"`
	Starts  []time.Time `json:"starts"`
}

// Window re-exposes the booking-window resolver for lifecycle callers that
// need to re-derive an appointment's original window.
func (s *Service) Window(ctx context.Context, ref time.Time, serviceIDs []uuid.UUID, branchID uuid.UUID) (time.Time, time.Time, error) {
	return s.window.MinMaxBookingDates(ctx, ref, serviceIDs, branchID)
}

// SlotCapacity resolves the bookable points and their capacities covering
// [from, to]; the confirm path feeds this into the ledger's conditional
// writes.
func (s *Service) SlotCapacity(ctx context.Context, branchID uuid.UUID, from, to time.Time) (map[time.Time]int, error) {
	_, capacity, err := s.resolver.OperatingHours(ctx, branchID, from, to)
	return capacity, err
}

// Ledger exposes the booked-slot ledger for lifecycle writers.
func (s *Service) Ledger() *Ledger { return s.ledger }

// Interval is the grid granularity the service was configured with.
func (s *Service) Interval() time.Duration { return s.resolver.Interval() }

// Duration returns the total appointment length for a service selection: the
// sum of the distinct service groups' durations.
func (s *Service) Duration(ctx context.Context, serviceIDs []uuid.UUID) (time.Duration, error) {
	services, err := s.services.ServicesByIDs(ctx, serviceIDs)
	if err != nil {
		return 0, fmt.Errorf("load services: %w", err)
	}
	if len(services) != len(serviceIDs) {
		return 0, fmt.Errorf("unknown service in selection")
	}
	seen := make(map[uuid.UUID]bool)
	groupIDs := make([]uuid.UUID, 0, len(services))
	for _, svc := range services {
		if !seen[svc.GroupID] {
			seen[svc.GroupID] = true
			groupIDs = append(groupIDs, svc.GroupID)
		}
	}
	groups, err := s.groups.GroupsByIDs(ctx, groupIDs)
	if err != nil {
		return 0, fmt.Errorf("load service groups: %w", err)
	}
	var total time.Duration
	for _, g := range groups {
		total += time.Duration(g.DurationMinutes) * time.Minute
	}
	return total, nil
}

// Timings answers "when can this selection be booked at this branch between
// from and to": booking window first, then resolved operating hours, then
// booked slots subtracted, then contiguous-duration search. ref anchors the
// window (now for new bookings, the original CreatedAt for reschedules).
func (s *Service) Timings(ctx context.Context, ref time.Time, branchID uuid.UUID, serviceIDs []uuid.UUID, from, to time.Time) (*Timings, error) {
	minDate, maxDate, err := s.window.MinMaxBookingDates(ctx, ref, serviceIDs, branchID)
	if err != nil {
		return nil, err
	}
	out := &Timings{MinDate: minDate, MaxDate: maxDate, Starts: []time.Time{}}
	if minDate.After(maxDate) {
		return out, nil
	}

	// Clamp the query window to the booking window.
	if from.Before(minDate) {
		from = minDate
	}
	if to.IsZero() || to.After(maxDate) {
		to = maxDate
	}
	if from.After(to) {
		return out, nil
	}

	duration, err := s.Duration(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}

	b, err := s.branches.GetByID(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("load branch: %w", err)
	}

	points, capacity, err := s.resolver.OperatingHours(ctx, branchID, from, to)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return out, nil
	}

	booked, err := s.ledger.BookedSlots(ctx, b.SGiMedBranchID, b.SGiMedCalendarID, from, to, points, capacity)
	if err != nil {
		return nil, err
	}

	free := points[:0:0]
	for _, p := range points {
		if !booked[p] {
			free = append(free, p)
		}
	}

	starts := AvailableStarts(free, duration, s.resolver.Interval())
	if starts != nil {
		out.Starts = starts
	}
	return out, nil
}
