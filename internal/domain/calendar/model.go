package calendar

import (
	"time"

	"github.com/google/uuid"
)

// PublicHoliday marks a calendar date whose operating hours follow the
// PUBLIC_HOLIDAY pseudo-day instead of the date's real weekday.
type PublicHoliday struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Date      time.Time `db:"holiday_date" json:"date"`
	Remarks   string    `db:"remarks" json:"remarks"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Blockoff removes a time range from a specific date for its linked branches.
// A slot is unavailable when it falls inside an enabled, non-deleted blockoff.
// AllowToggle blockoffs are transient staff-created records ("clinic closed
// right now") that can be flipped on and off during the day.
type Blockoff struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	Date        time.Time   `db:"blockoff_date" json:"date"`
	StartMinute int         `db:"start_minute" json:"start_minute"`
	EndMinute   int         `db:"end_minute" json:"end_minute"`
	Enabled     bool        `db:"enabled" json:"enabled"`
	Deleted     bool        `db:"deleted" json:"deleted"`
	AllowToggle bool        `db:"allow_toggle" json:"allow_toggle"`
	BranchIDs   []uuid.UUID `json:"branch_ids"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// SameDate reports whether two instants fall on the same civil date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
