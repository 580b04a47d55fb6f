package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status is the appointment lifecycle state. PREPAYMENT and PAYMENT_STARTED
// are provisional holds that never occupy the booked-slot ledger and are
// swept when abandoned; only CONFIRMED appointments reserve capacity.
type Status string

const (
	StatusPrepayment     Status = "PREPAYMENT"
	StatusPaymentStarted Status = "PAYMENT_STARTED"
	StatusConfirmed      Status = "CONFIRMED"
	StatusCancelled      Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusPrepayment:     {StatusPaymentStarted, StatusConfirmed, StatusCancelled},
	StatusPaymentStarted: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusCancelled},
	StatusCancelled:      {},
}

// CanTransitionTo reports whether the status machine permits moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BranchSnapshot freezes the branch details at booking time. The ledger keys
// ride along so lifecycle writes never re-read the live branch record.
type BranchSnapshot struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Code             string    `json:"code"`
	Address          *string   `json:"address,omitempty"`
	SGiMedBranchID   string    `json:"sgimed_branch_id"`
	SGiMedCalendarID string    `json:"sgimed_calendar_id"`
}

// ServiceSnapshot freezes one selected service, including pricing, at
// booking time. Snapshots are never re-derived from the live catalog.
type ServiceSnapshot struct {
	ID              uuid.UUID `json:"id"`
	GroupID         uuid.UUID `json:"group_id"`
	GroupName       string    `json:"group_name"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int64     `json:"price_cents"`
}

// Guest is an attendee on a family booking.
type Guest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Appointment is the booking record. Branch, Services and Guests are
// denormalized JSON snapshots frozen at creation. Family bookings share a
// GroupID and are distinguished by Index.
type Appointment struct {
	ID              uuid.UUID         `db:"id" json:"id"`
	GroupID         uuid.UUID         `db:"group_id" json:"group_id"`
	Index           int               `db:"idx" json:"index"`
	Status          Status            `db:"status" json:"status"`
	StartDatetime   time.Time         `db:"start_datetime" json:"start_datetime"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	Branch          BranchSnapshot    `db:"branch" json:"branch"`
	Services        []ServiceSnapshot `db:"services" json:"services"`
	Guests          []Guest           `db:"guests" json:"guests,omitempty"`
	CorporateCode   *string           `db:"corporate_code" json:"corporate_code,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// End is the exclusive end of the booked interval.
func (a *Appointment) End() time.Time {
	return a.StartDatetime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// ServiceIDs lists the snapshot's original catalog service IDs.
func (a *Appointment) ServiceIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(a.Services))
	for i, s := range a.Services {
		ids[i] = s.ID
	}
	return ids
}
