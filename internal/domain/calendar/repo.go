package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type HolidayRepository interface {
	Create(ctx context.Context, h *PublicHoliday) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*PublicHoliday, int, error)
	HolidaysInRange(ctx context.Context, from, to time.Time) ([]*PublicHoliday, error)
}

type BlockoffRepository interface {
	Create(ctx context.Context, b *Blockoff) error
	GetByID(ctx context.Context, id uuid.UUID) (*Blockoff, error)
	Update(ctx context.Context, b *Blockoff) error
	// SoftDelete marks the blockoff deleted; historical rows are retained.
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Blockoff, int, error)
	// BlockoffsInRange returns enabled, non-deleted blockoffs linked to the
	// branch whose date falls within [from, to].
	BlockoffsInRange(ctx context.Context, branchID uuid.UUID, from, to time.Time) ([]*Blockoff, error)
}
