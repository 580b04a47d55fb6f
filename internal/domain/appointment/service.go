package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicops/clinicops/internal/domain/availability"
	"github.com/clinicops/clinicops/internal/domain/branch"
	"github.com/clinicops/clinicops/internal/domain/catalog"
	"github.com/clinicops/clinicops/internal/platform/clock"
	"github.com/clinicops/clinicops/internal/platform/db"
	"github.com/clinicops/clinicops/internal/platform/events"
)

var (
	// ErrOutsideWindow means the requested start falls outside the booking
	// window derived for the selection.
	ErrOutsideWindow = errors.New("start is outside the allowed booking window")
	// ErrInvalidTransition means the status machine forbids the change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrCodeRequired means a selected group is corporate-gated and no valid
	// code was supplied.
	ErrCodeRequired = errors.New("a valid corporate code is required for this selection")
)

// Availability is the slice of the availability service the lifecycle needs.
type Availability interface {
	Window(ctx context.Context, ref time.Time, serviceIDs []uuid.UUID, branchID uuid.UUID) (time.Time, time.Time, error)
	SlotCapacity(ctx context.Context, branchID uuid.UUID, from, to time.Time) (map[time.Time]int, error)
	Interval() time.Duration
}

// LedgerWriter applies booked-slot deltas; satisfied by availability.Ledger.
type LedgerWriter interface {
	ApplyTimeChanges(ctx context.Context, changes []availability.TimeChange, capacity map[time.Time]int) error
}

type BranchSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*branch.Branch, error)
}

type ServiceSource interface {
	ServicesByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Service, error)
}

type GroupSource interface {
	GroupsByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.ServiceGroup, error)
}

// CodeValidator is satisfied by catalog.Manager.
type CodeValidator interface {
	ValidateCode(ctx context.Context, code string, at time.Time) (*catalog.CorporateCode, error)
}

// Service drives the appointment lifecycle. Ledger writes always share a
// transaction with the status change they belong to, so a full slot rolls
// the whole confirmation back.
type Service struct {
	repo     Repository
	avail    Availability
	ledger   LedgerWriter
	branches BranchSource
	services ServiceSource
	groups   GroupSource
	codes    CodeValidator
	pub      events.Publisher
	clk      clock.Clock
	runTx    func(ctx context.Context, fn func(context.Context) error) error
	holdTTL  time.Duration
}

func NewService(repo Repository, pool *pgxpool.Pool, avail Availability, ledger LedgerWriter,
	branches BranchSource, services ServiceSource, groups GroupSource, codes CodeValidator,
	pub events.Publisher, clk clock.Clock, holdTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		avail:    avail,
		ledger:   ledger,
		branches: branches,
		services: services,
		groups:   groups,
		codes:    codes,
		pub:      pub,
		clk:      clk,
		runTx: func(ctx context.Context, fn func(context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		},
		holdTTL: holdTTL,
	}
}

// CreateRequest is a booking hold request. Each guest beyond the first
// produces an additional appointment sharing the same GroupID (family
// bookings); with no guests a single appointment is created.
type CreateRequest struct {
	BranchID      uuid.UUID   `json:"branch_id"`
	ServiceIDs    []uuid.UUID `json:"service_ids"`
	StartDatetime time.Time   `json:"start_datetime"`
	CorporateCode string      `json:"corporate_code,omitempty"`
	Guests        []Guest     `json:"guests,omitempty"`
}

// CreateHold validates the selection and booking window and records
// PREPAYMENT holds. Holds never touch the ledger; capacity is only claimed
// at confirmation.
func (s *Service) CreateHold(ctx context.Context, req CreateRequest) ([]*Appointment, error) {
	now := s.clk.Now()

	services, err := s.services.ServicesByIDs(ctx, req.ServiceIDs)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	if len(services) == 0 || len(services) != len(req.ServiceIDs) {
		return nil, fmt.Errorf("unknown service in selection")
	}

	groupIDs := distinctGroupIDs(services)
	groups, err := s.groups.GroupsByIDs(ctx, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("load service groups: %w", err)
	}

	if err := s.checkCorporateGate(ctx, groups, req.CorporateCode, now); err != nil {
		return nil, err
	}

	minDate, maxDate, err := s.avail.Window(ctx, now, req.ServiceIDs, req.BranchID)
	if err != nil {
		return nil, err
	}
	if minDate.After(maxDate) || req.StartDatetime.Before(minDate) || req.StartDatetime.After(maxDate) {
		return nil, ErrOutsideWindow
	}

	b, err := s.branches.GetByID(ctx, req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("load branch: %w", err)
	}

	branchSnap := BranchSnapshot{
		ID:               b.ID,
		Name:             b.Name,
		Code:             b.Code,
		Address:          b.Address,
		SGiMedBranchID:   b.SGiMedBranchID,
		SGiMedCalendarID: b.SGiMedCalendarID,
	}
	serviceSnaps, durationMinutes := snapshotServices(services, groups)

	var code *string
	if req.CorporateCode != "" {
		code = &req.CorporateCode
	}

	count := len(req.Guests)
	if count == 0 {
		count = 1
	}
	familyID := uuid.New()
	appts := make([]*Appointment, 0, count)
	for i := 0; i < count; i++ {
		a := &Appointment{
			GroupID:         familyID,
			Index:           i,
			Status:          StatusPrepayment,
			StartDatetime:   req.StartDatetime,
			DurationMinutes: durationMinutes,
			Branch:          branchSnap,
			Services:        serviceSnaps,
			CorporateCode:   code,
		}
		if i < len(req.Guests) {
			a.Guests = []Guest{req.Guests[i]}
		}
		appts = append(appts, a)
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		for _, a := range appts {
			if err := s.repo.Create(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func distinctGroupIDs(services []*catalog.Service) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, svc := range services {
		if !seen[svc.GroupID] {
			seen[svc.GroupID] = true
			ids = append(ids, svc.GroupID)
		}
	}
	return ids
}

func snapshotServices(services []*catalog.Service, groups []*catalog.ServiceGroup) ([]ServiceSnapshot, int) {
	byID := make(map[uuid.UUID]*catalog.ServiceGroup, len(groups))
	duration := 0
	for _, g := range groups {
		byID[g.ID] = g
		duration += g.DurationMinutes
	}
	snaps := make([]ServiceSnapshot, 0, len(services))
	for _, svc := range services {
		snap := ServiceSnapshot{
			ID:         svc.ID,
			GroupID:    svc.GroupID,
			Name:       svc.Name,
			PriceCents: svc.PriceCents,
		}
		if g := byID[svc.GroupID]; g != nil {
			snap.GroupName = g.Name
			snap.DurationMinutes = g.DurationMinutes
		}
		snaps = append(snaps, snap)
	}
	return snaps, duration
}

func (s *Service) checkCorporateGate(ctx context.Context, groups []*catalog.ServiceGroup, code string, now time.Time) error {
	var gated bool
	for _, g := range groups {
		if g.CorporateCodeID != nil {
			gated = true
			break
		}
	}
	if !gated {
		return nil
	}
	cc, err := s.codes.ValidateCode(ctx, code, now)
	if err != nil {
		return ErrCodeRequired
	}
	for _, g := range groups {
		if g.CorporateCodeID != nil && *g.CorporateCodeID != cc.ID {
			return ErrCodeRequired
		}
	}
	return nil
}

// StartPayment marks a hold as in-payment.
func (s *Service) StartPayment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Status.CanTransitionTo(StatusPaymentStarted) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, StatusPaymentStarted)
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusPaymentStarted); err != nil {
		return nil, err
	}
	a.Status = StatusPaymentStarted
	return a, nil
}

// ConfirmGroup is the payment-success webhook path: every hold in the family
// booking becomes CONFIRMED and claims its ledger capacity in one
// transaction. ErrSlotFull rolls the whole group back; the payment side then
// refunds and the caller surfaces the conflict.
func (s *Service) ConfirmGroup(ctx context.Context, familyID uuid.UUID) ([]*Appointment, error) {
	appts, err := s.repo.ListByGroup(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if len(appts) == 0 {
		return nil, fmt.Errorf("booking group %s not found", familyID)
	}

	var changes []availability.TimeChange
	for _, a := range appts {
		if a.Status == StatusConfirmed {
			continue
		}
		if !a.Status.CanTransitionTo(StatusConfirmed) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, StatusConfirmed)
		}
		changes = append(changes, availability.ComputeTimeChanges(
			a.Branch.SGiMedBranchID, a.Branch.SGiMedCalendarID,
			a.StartDatetime, a.End(), s.avail.Interval(), false)...)
	}
	if len(changes) == 0 {
		return appts, nil
	}

	first := appts[0]
	dayStart, dayEnd := spanBounds(first.StartDatetime, first.End())
	capacity, err := s.avail.SlotCapacity(ctx, first.Branch.ID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.ApplyTimeChanges(ctx, changes, capacity); err != nil {
			return err
		}
		for _, a := range appts {
			if a.Status == StatusConfirmed {
				continue
			}
			if err := s.repo.UpdateStatus(ctx, a.ID, StatusConfirmed); err != nil {
				return err
			}
			a.Status = StatusConfirmed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	for _, a := range appts {
		s.pub.Publish(ctx, events.Event{
			Type:          events.TypeAppointmentConfirmed,
			AppointmentID: a.ID,
			BranchID:      a.Branch.ID,
			StartDatetime: a.StartDatetime,
			OccurredAt:    now,
		})
	}
	return appts, nil
}

// Cancel releases the appointment. A confirmed appointment returns its
// ledger capacity in the same transaction; holds simply flip state.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Status.CanTransitionTo(StatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, StatusCancelled)
	}

	wasConfirmed := a.Status == StatusConfirmed
	err = s.runTx(ctx, func(ctx context.Context) error {
		if wasConfirmed {
			changes := availability.ComputeTimeChanges(
				a.Branch.SGiMedBranchID, a.Branch.SGiMedCalendarID,
				a.StartDatetime, a.End(), s.avail.Interval(), true)
			if err := s.ledger.ApplyTimeChanges(ctx, changes, nil); err != nil {
				return err
			}
		}
		return s.repo.UpdateStatus(ctx, a.ID, StatusCancelled)
	})
	if err != nil {
		return nil, err
	}
	a.Status = StatusCancelled

	s.pub.Publish(ctx, events.Event{
		Type:          events.TypeAppointmentCancelled,
		AppointmentID: a.ID,
		BranchID:      a.Branch.ID,
		StartDatetime: a.StartDatetime,
		OccurredAt:    s.clk.Now(),
	})
	return a, nil
}

// Reschedule moves an appointment to a new start. The booking window is
// re-derived from the appointment's original CreatedAt, not from now, so a
// reschedule keeps exactly the window the booking was granted. For a
// confirmed appointment the old and new ledger deltas are summed and applied
// atomically; overlapping points net out and are never double-counted.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newStart time.Time) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCancelled {
		return nil, fmt.Errorf("%w: cancelled appointments cannot be rescheduled", ErrInvalidTransition)
	}

	minDate, maxDate, err := s.avail.Window(ctx, a.CreatedAt, a.ServiceIDs(), a.Branch.ID)
	if err != nil {
		return nil, err
	}
	if minDate.After(maxDate) || newStart.Before(minDate) || newStart.After(maxDate) {
		return nil, ErrOutsideWindow
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if a.Status == StatusConfirmed {
			duration := time.Duration(a.DurationMinutes) * time.Minute
			changes := append(
				availability.ComputeTimeChanges(
					a.Branch.SGiMedBranchID, a.Branch.SGiMedCalendarID,
					a.StartDatetime, a.End(), s.avail.Interval(), true),
				availability.ComputeTimeChanges(
					a.Branch.SGiMedBranchID, a.Branch.SGiMedCalendarID,
					newStart, newStart.Add(duration), s.avail.Interval(), false)...,
			)
			dayStart, dayEnd := spanBounds(newStart, newStart.Add(duration))
			capacity, err := s.avail.SlotCapacity(ctx, a.Branch.ID, dayStart, dayEnd)
			if err != nil {
				return err
			}
			if err := s.ledger.ApplyTimeChanges(ctx, changes, capacity); err != nil {
				return err
			}
		}
		return s.repo.UpdateSchedule(ctx, a.ID, newStart)
	})
	if err != nil {
		return nil, err
	}
	a.StartDatetime = newStart

	s.pub.Publish(ctx, events.Event{
		Type:          events.TypeAppointmentRescheduled,
		AppointmentID: a.ID,
		BranchID:      a.Branch.ID,
		StartDatetime: newStart,
		OccurredAt:    s.clk.Now(),
	})
	return a, nil
}

// SweepAbandoned deletes provisional holds older than the hold TTL. Invoked
// from the sweep subcommand by an external scheduler.
func (s *Service) SweepAbandoned(ctx context.Context) (int64, error) {
	cutoff := s.clk.Now().Add(-s.holdTTL)
	return s.repo.DeleteAbandoned(ctx, cutoff)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByBranch(ctx context.Context, branchID uuid.UUID, from, to time.Time, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByBranch(ctx, branchID, from, to, limit, offset)
}

// spanBounds widens [start, end] to whole civil days so the capacity lookup
// covers every grid point, including one past midnight.
func spanBounds(start, end time.Time) (time.Time, time.Time) {
	y, m, d := start.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, start.Location())
	y, m, d = end.Date()
	to := time.Date(y, m, d, 23, 59, 59, 0, end.Location())
	return from, to
}
