package branch

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, b *Branch) error
	GetByID(ctx context.Context, id uuid.UUID) (*Branch, error)
	GetByCode(ctx context.Context, code string) (*Branch, error)
	Update(ctx context.Context, b *Branch) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Branch, int, error)
}

type OperatingHourRepository interface {
	Create(ctx context.Context, oh *OperatingHour) error
	Update(ctx context.Context, oh *OperatingHour) error
	Delete(ctx context.Context, id uuid.UUID) error
	OperatingHoursByBranch(ctx context.Context, branchID uuid.UUID) ([]*OperatingHour, error)
}

type AppointmentHourRepository interface {
	Create(ctx context.Context, ah *AppointmentOperatingHour) error
	Update(ctx context.Context, ah *AppointmentOperatingHour) error
	Delete(ctx context.Context, id uuid.UUID) error
	AppointmentHoursByBranch(ctx context.Context, branchID uuid.UUID) ([]*AppointmentOperatingHour, error)
}
