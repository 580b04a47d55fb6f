package branch

import (
	"time"

	"github.com/google/uuid"
)

type BranchType string

const (
	TypePermanent BranchType = "PERMANENT"
	TypeOnsite    BranchType = "ONSITE"
)

// Branch is a physical clinic location. SGiMed identifiers tie the branch to
// the external clinic-management system's branch and calendar records; the
// booked-slot ledger is keyed by them.
type Branch struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Code             string     `db:"code" json:"code"`
	Type             BranchType `db:"type" json:"type"`
	Address          *string    `db:"address" json:"address,omitempty"`
	SGiMedBranchID   string     `db:"sgimed_branch_id" json:"sgimed_branch_id"`
	SGiMedCalendarID string     `db:"sgimed_calendar_id" json:"sgimed_calendar_id"`
	IsActive         bool       `db:"is_active" json:"is_active"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// DayOfWeek is a weekday key for operating hours. PUBLIC_HOLIDAY is a
// pseudo-day: any date listed in the public-holiday calendar resolves to it
// instead of its real weekday.
type DayOfWeek string

const (
	Monday        DayOfWeek = "MONDAY"
	Tuesday       DayOfWeek = "TUESDAY"
	Wednesday     DayOfWeek = "WEDNESDAY"
	Thursday      DayOfWeek = "THURSDAY"
	Friday        DayOfWeek = "FRIDAY"
	Saturday      DayOfWeek = "SATURDAY"
	Sunday        DayOfWeek = "SUNDAY"
	PublicHoliday DayOfWeek = "PUBLIC_HOLIDAY"
)

var validDays = map[DayOfWeek]bool{
	Monday: true, Tuesday: true, Wednesday: true, Thursday: true,
	Friday: true, Saturday: true, Sunday: true, PublicHoliday: true,
}

func (d DayOfWeek) Valid() bool { return validDays[d] }

// DayOf maps a calendar date to its DayOfWeek key, ignoring holidays.
func DayOf(t time.Time) DayOfWeek {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// OperatingHour is a recurring weekly window during which a branch is open.
// Times are minutes from midnight; CutoffMinutes is trimmed off the end of
// the window before it is considered bookable.
type OperatingHour struct {
	ID            uuid.UUID `db:"id" json:"id"`
	BranchID      uuid.UUID `db:"branch_id" json:"branch_id"`
	Day           DayOfWeek `db:"day_of_week" json:"day_of_week"`
	StartMinute   int       `db:"start_minute" json:"start_minute"`
	EndMinute     int       `db:"end_minute" json:"end_minute"`
	CutoffMinutes int       `db:"cutoff_minutes" json:"cutoff_minutes"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// AppointmentOperatingHour mirrors OperatingHour but is scoped to the
// appointment-booking feature and carries a per-slot booking capacity.
// Effective appointment availability is the intersection of the two tables;
// appointment slots cannot exist outside general operating hours.
type AppointmentOperatingHour struct {
	ID            uuid.UUID `db:"id" json:"id"`
	BranchID      uuid.UUID `db:"branch_id" json:"branch_id"`
	Day           DayOfWeek `db:"day_of_week" json:"day_of_week"`
	StartMinute   int       `db:"start_minute" json:"start_minute"`
	EndMinute     int       `db:"end_minute" json:"end_minute"`
	CutoffMinutes int       `db:"cutoff_minutes" json:"cutoff_minutes"`
	MaxBookings   int       `db:"max_bookings" json:"max_bookings"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
