package availability

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/clinicops/internal/domain/branch"
	"github.com/clinicops/clinicops/internal/domain/calendar"
	"github.com/clinicops/clinicops/internal/domain/catalog"
)

// ErrSlotFull is returned when a ledger increment would push a slot past its
// capacity. The conditional write makes this an atomic, detectable failure
// instead of a silent double-booking.
var ErrSlotFull = errors.New("slot is fully booked")

// Source interfaces are satisfied by the domain repositories; the resolver
// only needs these read paths.

type HoursSource interface {
	OperatingHoursByBranch(ctx context.Context, branchID uuid.UUID) ([]*branch.OperatingHour, error)
}

type AppointmentHoursSource interface {
	AppointmentHoursByBranch(ctx context.Context, branchID uuid.UUID) ([]*branch.AppointmentOperatingHour, error)
}

type HolidaySource interface {
	HolidaysInRange(ctx context.Context, from, to time.Time) ([]*calendar.PublicHoliday, error)
}

type BlockoffSource interface {
	BlockoffsInRange(ctx context.Context, branchID uuid.UUID, from, to time.Time) ([]*calendar.Blockoff, error)
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

type OnsiteSource interface {
	GetByBranch(ctx context.Context, branchID uuid.UUID) (*catalog.OnsiteBranch, error)
}

// LedgerRepository is the persistence contract for the booked-slot counter.
type LedgerRepository interface {
	// Increment adds delta to the slot's count, creating the row at delta if
	// absent, but only while the result stays within max. Returns ErrSlotFull
	// when the conditional write affects zero rows.
	Increment(ctx context.Context, branchID, calendarID string, at time.Time, delta, max int) error
	// Decrement subtracts delta from the slot's count, flooring at zero.
	Decrement(ctx context.Context, branchID, calendarID string, at time.Time, delta int) error
	// CountsAtLeast returns slot counts in [from, to] whose count >= min.
	CountsAtLeast(ctx context.Context, branchID, calendarID string, from, to time.Time, min int) (map[time.Time]int, error)
}
