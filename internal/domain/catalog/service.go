package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrCodeInvalid is returned when a corporate code is unknown, inactive,
// or outside its validity window.
var ErrCodeInvalid = errors.New("corporate code is not valid")

// Manager exposes catalog administration and the corporate-code checks the
// booking flow depends on.
type Manager struct {
	groups   GroupRepository
	services ServiceRepository
	codes    CorporateCodeRepository
	onsite   OnsiteBranchRepository
}

func NewManager(groups GroupRepository, services ServiceRepository,
	codes CorporateCodeRepository, onsite OnsiteBranchRepository) *Manager {
	return &Manager{groups: groups, services: services, codes: codes, onsite: onsite}
}

// -- Service groups --

func validateGroup(g *ServiceGroup) error {
	if g.Name == "" {
		return fmt.Errorf("name is required")
	}
	if g.DurationMinutes < 1 {
		return fmt.Errorf("duration_minutes must be at least 1")
	}
	if g.Type == "" {
		g.Type = GroupNoDetail
	}
	if !validGroupTypes[g.Type] {
		return fmt.Errorf("invalid group type: %s", g.Type)
	}
	if g.StartDate != nil && g.EndDate != nil && g.EndDate.Before(*g.StartDate) {
		return fmt.Errorf("end_date cannot be before start_date")
	}
	return nil
}

func (m *Manager) CreateGroup(ctx context.Context, g *ServiceGroup) error {
	if err := validateGroup(g); err != nil {
		return err
	}
	return m.groups.Create(ctx, g)
}

func (m *Manager) GetGroup(ctx context.Context, id uuid.UUID) (*ServiceGroup, error) {
	return m.groups.GetByID(ctx, id)
}

func (m *Manager) UpdateGroup(ctx context.Context, g *ServiceGroup) error {
	if err := validateGroup(g); err != nil {
		return err
	}
	return m.groups.Update(ctx, g)
}

func (m *Manager) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	return m.groups.Delete(ctx, id)
}

func (m *Manager) ListGroups(ctx context.Context, limit, offset int) ([]*ServiceGroup, int, error) {
	return m.groups.List(ctx, limit, offset)
}

// -- Services --

func (m *Manager) CreateService(ctx context.Context, s *Service) error {
	if s.GroupID == uuid.Nil {
		return fmt.Errorf("group_id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.MinBookingAheadDays < 0 {
		return fmt.Errorf("min_booking_ahead_days cannot be negative")
	}
	if _, err := m.groups.GetByID(ctx, s.GroupID); err != nil {
		return fmt.Errorf("group %s: %w", s.GroupID, err)
	}
	return m.services.Create(ctx, s)
}

func (m *Manager) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	return m.services.GetByID(ctx, id)
}

func (m *Manager) UpdateService(ctx context.Context, s *Service) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.MinBookingAheadDays < 0 {
		return fmt.Errorf("min_booking_ahead_days cannot be negative")
	}
	return m.services.Update(ctx, s)
}

func (m *Manager) DeleteService(ctx context.Context, id uuid.UUID) error {
	return m.services.Delete(ctx, id)
}

func (m *Manager) ListServices(ctx context.Context, groupID uuid.UUID) ([]*Service, error) {
	return m.services.ListByGroup(ctx, groupID)
}

// -- Corporate codes --

func (m *Manager) CreateCorporateCode(ctx context.Context, c *CorporateCode) error {
	if c.Code == "" {
		return fmt.Errorf("code is required")
	}
	if c.Organization == "" {
		return fmt.Errorf("organization is required")
	}
	if c.ValidTo.Before(c.ValidFrom) {
		return fmt.Errorf("valid_to cannot be before valid_from")
	}
	return m.codes.Create(ctx, c)
}

func (m *Manager) UpdateCorporateCode(ctx context.Context, c *CorporateCode) error {
	if c.ValidTo.Before(c.ValidFrom) {
		return fmt.Errorf("valid_to cannot be before valid_from")
	}
	return m.codes.Update(ctx, c)
}

func (m *Manager) DeleteCorporateCode(ctx context.Context, id uuid.UUID) error {
	return m.codes.Delete(ctx, id)
}

func (m *Manager) ListCorporateCodes(ctx context.Context, limit, offset int) ([]*CorporateCode, int, error) {
	return m.codes.List(ctx, limit, offset)
}

// ValidateCode resolves a corporate code string and checks it is usable at
// the given time. A usable code unlocks its gated groups; it has no bearing
// on how far ahead an appointment may be booked.
func (m *Manager) ValidateCode(ctx context.Context, code string, at time.Time) (*CorporateCode, error) {
	if code == "" {
		return nil, ErrCodeInvalid
	}
	c, err := m.codes.GetByCode(ctx, code)
	if err != nil {
		return nil, ErrCodeInvalid
	}
	if !c.Usable(at) {
		return nil, ErrCodeInvalid
	}
	return c, nil
}

// -- Onsite branches --

func (m *Manager) CreateOnsiteBranch(ctx context.Context, o *OnsiteBranch) error {
	if o.CorporateCodeID == uuid.Nil || o.BranchID == uuid.Nil {
		return fmt.Errorf("corporate_code_id and branch_id are required")
	}
	if o.EndDate.Before(o.StartDate) {
		return fmt.Errorf("end_date cannot be before start_date")
	}
	return m.onsite.Create(ctx, o)
}

func (m *Manager) DeleteOnsiteBranch(ctx context.Context, id uuid.UUID) error {
	return m.onsite.Delete(ctx, id)
}

func (m *Manager) ListOnsiteBranches(ctx context.Context, corporateCodeID uuid.UUID) ([]*OnsiteBranch, error) {
	return m.onsite.ListByCode(ctx, corporateCodeID)
}
