package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// ListByGroup returns all members of a family booking, ordered by index.
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Appointment, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID, from, to time.Time, limit, offset int) ([]*Appointment, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	UpdateSchedule(ctx context.Context, id uuid.UUID, start time.Time) error
	// DeleteAbandoned removes provisional holds (PREPAYMENT, PAYMENT_STARTED)
	// created before the cutoff. They never held ledger capacity.
	DeleteAbandoned(ctx context.Context, before time.Time) (int64, error)
}
