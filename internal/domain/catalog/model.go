package catalog

import (
	"time"

	"github.com/google/uuid"
)

// GroupType is the selection cardinality a group presents during booking.
type GroupType string

const (
	GroupNoDetail GroupType = "NO_DETAIL"
	GroupSingle   GroupType = "SINGLE"
	GroupMultiple GroupType = "MULTIPLE"
)

var validGroupTypes = map[GroupType]bool{
	GroupNoDetail: true, GroupSingle: true, GroupMultiple: true,
}

// ServiceGroup bundles bookable services. Duration is the appointment length
// for the whole group; the optional start/end dates bound when the group can
// be booked, and an optional corporate code gates who can see it.
type ServiceGroup struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	Type            GroupType  `db:"type" json:"type"`
	StartDate       *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate         *time.Time `db:"end_date" json:"end_date,omitempty"`
	CorporateCodeID *uuid.UUID `db:"corporate_code_id" json:"corporate_code_id,omitempty"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Service is an individual bookable item within a group.
type Service struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	GroupID             uuid.UUID `db:"group_id" json:"group_id"`
	Name                string    `db:"name" json:"name"`
	PriceCents          int64     `db:"price_cents" json:"price_cents"`
	MinBookingAheadDays int       `db:"min_booking_ahead_days" json:"min_booking_ahead_days"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// CorporateCode unlocks corporate-gated service groups. Its validity window
// gates whether the code can be used to unlock a group; it deliberately does
// NOT cap the maximum bookable date.
type CorporateCode struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Organization string    `db:"organization" json:"organization"`
	ValidFrom    time.Time `db:"valid_from" json:"valid_from"`
	ValidTo      time.Time `db:"valid_to" json:"valid_to"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Usable reports whether the code unlocks its groups at the given time.
func (c *CorporateCode) Usable(at time.Time) bool {
	return c.IsActive && !at.Before(c.ValidFrom) && !at.After(c.ValidTo)
}

// OnsiteBranch is a temporary physical location stood up for a corporate
// client. Bookings at the branch cannot fall outside its window.
type OnsiteBranch struct {
	ID              uuid.UUID `db:"id" json:"id"`
	CorporateCodeID uuid.UUID `db:"corporate_code_id" json:"corporate_code_id"`
	BranchID        uuid.UUID `db:"branch_id" json:"branch_id"`
	StartDate       time.Time `db:"start_date" json:"start_date"`
	EndDate         time.Time `db:"end_date" json:"end_date"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
