package branch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const minutesPerDay = 24 * 60

type Service struct {
	branches  Repository
	hours     OperatingHourRepository
	apptHours AppointmentHourRepository
}

func NewService(branches Repository, hours OperatingHourRepository, apptHours AppointmentHourRepository) *Service {
	return &Service{branches: branches, hours: hours, apptHours: apptHours}
}

// -- Branch --

func (s *Service) CreateBranch(ctx context.Context, b *Branch) error {
	if b.Name == "" {
		return fmt.Errorf("name is required")
	}
	if b.Code == "" {
		return fmt.Errorf("code is required")
	}
	if b.Type == "" {
		b.Type = TypePermanent
	}
	if b.Type != TypePermanent && b.Type != TypeOnsite {
		return fmt.Errorf("invalid branch type: %s", b.Type)
	}
	if b.SGiMedBranchID == "" || b.SGiMedCalendarID == "" {
		return fmt.Errorf("sgimed_branch_id and sgimed_calendar_id are required")
	}
	return s.branches.Create(ctx, b)
}

func (s *Service) GetBranch(ctx context.Context, id uuid.UUID) (*Branch, error) {
	return s.branches.GetByID(ctx, id)
}

func (s *Service) UpdateBranch(ctx context.Context, b *Branch) error {
	if b.Type != "" && b.Type != TypePermanent && b.Type != TypeOnsite {
		return fmt.Errorf("invalid branch type: %s", b.Type)
	}
	return s.branches.Update(ctx, b)
}

func (s *Service) DeleteBranch(ctx context.Context, id uuid.UUID) error {
	return s.branches.Delete(ctx, id)
}

func (s *Service) ListBranches(ctx context.Context, limit, offset int) ([]*Branch, int, error) {
	return s.branches.List(ctx, limit, offset)
}

// -- Operating hours --

func validateWindow(day DayOfWeek, startMinute, endMinute, cutoff int) error {
	if !day.Valid() {
		return fmt.Errorf("invalid day_of_week: %s", day)
	}
	if startMinute < 0 || startMinute >= minutesPerDay {
		return fmt.Errorf("start_minute out of range: %d", startMinute)
	}
	if endMinute <= startMinute || endMinute > minutesPerDay {
		return fmt.Errorf("end_minute must be after start_minute and within the day")
	}
	if cutoff < 0 {
		return fmt.Errorf("cutoff_minutes cannot be negative")
	}
	return nil
}

func (s *Service) CreateOperatingHour(ctx context.Context, oh *OperatingHour) error {
	if oh.BranchID == uuid.Nil {
		return fmt.Errorf("branch_id is required")
	}
	if err := validateWindow(oh.Day, oh.StartMinute, oh.EndMinute, oh.CutoffMinutes); err != nil {
		return err
	}
	return s.hours.Create(ctx, oh)
}

func (s *Service) UpdateOperatingHour(ctx context.Context, oh *OperatingHour) error {
	if err := validateWindow(oh.Day, oh.StartMinute, oh.EndMinute, oh.CutoffMinutes); err != nil {
		return err
	}
	return s.hours.Update(ctx, oh)
}

func (s *Service) DeleteOperatingHour(ctx context.Context, id uuid.UUID) error {
	return s.hours.Delete(ctx, id)
}

func (s *Service) ListOperatingHours(ctx context.Context, branchID uuid.UUID) ([]*OperatingHour, error) {
	return s.hours.OperatingHoursByBranch(ctx, branchID)
}

// -- Appointment operating hours --

func (s *Service) CreateAppointmentHour(ctx context.Context, ah *AppointmentOperatingHour) error {
	if ah.BranchID == uuid.Nil {
		return fmt.Errorf("branch_id is required")
	}
	if err := validateWindow(ah.Day, ah.StartMinute, ah.EndMinute, ah.CutoffMinutes); err != nil {
		return err
	}
	if ah.MaxBookings < 1 {
		return fmt.Errorf("max_bookings must be at least 1")
	}
	return s.apptHours.Create(ctx, ah)
}

func (s *Service) UpdateAppointmentHour(ctx context.Context, ah *AppointmentOperatingHour) error {
	if err := validateWindow(ah.Day, ah.StartMinute, ah.EndMinute, ah.CutoffMinutes); err != nil {
		return err
	}
	if ah.MaxBookings < 1 {
		return fmt.Errorf("max_bookings must be at least 1")
	}
	return s.apptHours.Update(ctx, ah)
}

func (s *Service) DeleteAppointmentHour(ctx context.Context, id uuid.UUID) error {
	return s.apptHours.Delete(ctx, id)
}

func (s *Service) ListAppointmentHours(ctx context.Context, branchID uuid.UUID) ([]*AppointmentOperatingHour, error) {
	return s.apptHours.AppointmentHoursByBranch(ctx, branchID)
}
