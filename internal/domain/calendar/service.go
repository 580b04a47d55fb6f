package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/clinicops/internal/domain/branch"
	"github.com/clinicops/clinicops/internal/platform/clock"
)

const minutesPerDay = 24 * 60

// OperatingWindowSource supplies the weekly operating-hour rows for a branch.
// Used to range a toggled-on blockoff to the remainder of the current window.
type OperatingWindowSource interface {
	OperatingHoursByBranch(ctx context.Context, branchID uuid.UUID) ([]*branch.OperatingHour, error)
}

type Service struct {
	holidays  HolidayRepository
	blockoffs BlockoffRepository
	hours     OperatingWindowSource
	clock     clock.Clock
}

func NewService(holidays HolidayRepository, blockoffs BlockoffRepository, hours OperatingWindowSource, clk clock.Clock) *Service {
	return &Service{holidays: holidays, blockoffs: blockoffs, hours: hours, clock: clk}
}

// -- Public holidays --

func (s *Service) CreateHoliday(ctx context.Context, h *PublicHoliday) error {
	if h.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return s.holidays.Create(ctx, h)
}

func (s *Service) DeleteHoliday(ctx context.Context, id uuid.UUID) error {
	return s.holidays.Delete(ctx, id)
}

func (s *Service) ListHolidays(ctx context.Context, limit, offset int) ([]*PublicHoliday, int, error) {
	return s.holidays.List(ctx, limit, offset)
}

// -- Blockoffs --

func (s *Service) CreateBlockoff(ctx context.Context, b *Blockoff) error {
	if b.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if len(b.BranchIDs) == 0 {
		return fmt.Errorf("at least one branch is required")
	}
	if b.StartMinute < 0 || b.EndMinute <= b.StartMinute || b.EndMinute > minutesPerDay {
		return fmt.Errorf("invalid blockoff time range")
	}
	b.Enabled = true
	b.Deleted = false
	return s.blockoffs.Create(ctx, b)
}

func (s *Service) GetBlockoff(ctx context.Context, id uuid.UUID) (*Blockoff, error) {
	return s.blockoffs.GetByID(ctx, id)
}

func (s *Service) UpdateBlockoff(ctx context.Context, b *Blockoff) error {
	if b.StartMinute < 0 || b.EndMinute <= b.StartMinute || b.EndMinute > minutesPerDay {
		return fmt.Errorf("invalid blockoff time range")
	}
	return s.blockoffs.Update(ctx, b)
}

func (s *Service) DeleteBlockoff(ctx context.Context, id uuid.UUID) error {
	return s.blockoffs.SoftDelete(ctx, id)
}

func (s *Service) ListBlockoffs(ctx context.Context, limit, offset int) ([]*Blockoff, int, error) {
	return s.blockoffs.List(ctx, limit, offset)
}

// Toggle flips an allow_toggle blockoff. Toggling on re-ranges the blockoff
// from the current minute to the end of the branch's current operating-hour
// window, so "close the clinic now" never leaks into tomorrow.
func (s *Service) Toggle(ctx context.Context, id uuid.UUID, on bool) (*Blockoff, error) {
	b, err := s.blockoffs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.AllowToggle {
		return nil, fmt.Errorf("blockoff does not allow toggling")
	}
	if b.Deleted {
		return nil, fmt.Errorf("blockoff is deleted")
	}

	if !on {
		b.Enabled = false
		if err := s.blockoffs.Update(ctx, b); err != nil {
			return nil, err
		}
		return b, nil
	}

	now := s.clock.Now()
	nowMinute := now.Hour()*60 + now.Minute()

	endMinute, err := s.currentWindowEnd(ctx, b.BranchIDs, now, nowMinute)
	if err != nil {
		return nil, err
	}

	b.Date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	b.StartMinute = nowMinute
	b.EndMinute = endMinute
	b.Enabled = true
	if err := s.blockoffs.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// currentWindowEnd finds the end of the operating window containing nowMinute
// for the first linked branch that is currently open. On a public holiday the
// PUBLIC_HOLIDAY rows replace the real weekday, same as availability
// resolution.
func (s *Service) currentWindowEnd(ctx context.Context, branchIDs []uuid.UUID, now time.Time, nowMinute int) (int, error) {
	day := branch.DayOf(now)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	holidays, err := s.holidays.HolidaysInRange(ctx, today, today)
	if err != nil {
		return 0, err
	}
	for _, h := range holidays {
		if SameDate(h.Date, now) {
			day = branch.PublicHoliday
			break
		}
	}
	for _, branchID := range branchIDs {
		hours, err := s.hours.OperatingHoursByBranch(ctx, branchID)
		if err != nil {
			return 0, err
		}
		for _, oh := range hours {
			if oh.Day == day && oh.StartMinute <= nowMinute && nowMinute < oh.EndMinute {
				return oh.EndMinute, nil
			}
		}
	}
	return 0, fmt.Errorf("no branch is within operating hours right now")
}

// HolidaysInRange exposes the date-set lookup used by availability resolution.
func (s *Service) HolidaysInRange(ctx context.Context, from, to time.Time) ([]*PublicHoliday, error) {
	return s.holidays.HolidaysInRange(ctx, from, to)
}
