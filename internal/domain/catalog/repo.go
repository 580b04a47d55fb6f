package catalog

import (
	"context"

	"github.com/google/uuid"
)

type GroupRepository interface {
	Create(ctx context.Context, g *ServiceGroup) error
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceGroup, error)
	GroupsByIDs(ctx context.Context, ids []uuid.UUID) ([]*ServiceGroup, error)
	List(ctx context.Context, limit, offset int) ([]*ServiceGroup, int, error)
	Update(ctx context.Context, g *ServiceGroup) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceRepository interface {
	Create(ctx context.Context, s *Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*Service, error)
	ServicesByIDs(ctx context.Context, ids []uuid.UUID) ([]*Service, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Service, error)
	Update(ctx context.Context, s *Service) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CorporateCodeRepository interface {
	Create(ctx context.Context, c *CorporateCode) error
	GetByID(ctx context.Context, id uuid.UUID) (*CorporateCode, error)
	GetByCode(ctx context.Context, code string) (*CorporateCode, error)
	List(ctx context.Context, limit, offset int) ([]*CorporateCode, int, error)
	Update(ctx context.Context, c *CorporateCode) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type OnsiteBranchRepository interface {
	Create(ctx context.Context, o *OnsiteBranch) error
	GetByBranch(ctx context.Context, branchID uuid.UUID) (*OnsiteBranch, error)
	ListByCode(ctx context.Context, corporateCodeID uuid.UUID) ([]*OnsiteBranch, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
