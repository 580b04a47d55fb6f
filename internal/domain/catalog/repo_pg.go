package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicops/clinicops/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Service Group Repository ===========

type groupRepoPG struct{ pool *pgxpool.Pool }

func NewGroupRepoPG(pool *pgxpool.Pool) GroupRepository { return &groupRepoPG{pool: pool} }

func (r *groupRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const groupCols = `id, name, duration_minutes, type, start_date, end_date, corporate_code_id,
	is_active, created_at, updated_at`

func (r *groupRepoPG) scanGroup(row pgx.Row) (*ServiceGroup, error) {
	var g ServiceGroup
	err := row.Scan(&g.ID, &g.Name, &g.DurationMinutes, &g.Type, &g.StartDate, &g.EndDate,
		&g.CorporateCodeID, &g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	return &g, err
}

func (r *groupRepoPG) Create(ctx context.Context, g *ServiceGroup) error {
	g.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment_service_group (id, name, duration_minutes, type, start_date,
			end_date, corporate_code_id, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		g.ID, g.Name, g.DurationMinutes, g.Type, g.StartDate, g.EndDate, g.CorporateCodeID, g.IsActive)
	return err
}

func (r *groupRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ServiceGroup, error) {
	return r.scanGroup(r.conn(ctx).QueryRow(ctx,
		`SELECT `+groupCols+` FROM appointment_service_group WHERE id = $1`, id))
}

func (r *groupRepoPG) GroupsByIDs(ctx context.Context, ids []uuid.UUID) ([]*ServiceGroup, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+groupCols+` FROM appointment_service_group WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ServiceGroup
	for rows.Next() {
		g, err := r.scanGroup(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

func (r *groupRepoPG) List(ctx context.Context, limit, offset int) ([]*ServiceGroup, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment_service_group`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+groupCols+` FROM appointment_service_group
		ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ServiceGroup
	for rows.Next() {
		g, err := r.scanGroup(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, g)
	}
	return items, total, rows.Err()
}

func (r *groupRepoPG) Update(ctx context.Context, g *ServiceGroup) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment_service_group SET name=$2, duration_minutes=$3, type=$4,
			start_date=$5, end_date=$6, corporate_code_id=$7, is_active=$8, updated_at=NOW()
		WHERE id = $1`,
		g.ID, g.Name, g.DurationMinutes, g.Type, g.StartDate, g.EndDate, g.CorporateCodeID, g.IsActive)
	return err
}

func (r *groupRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment_service_group WHERE id = $1`, id)
	return err
}

// =========== Service Repository ===========

type serviceRepoPG struct{ pool *pgxpool.Pool }

func NewServiceRepoPG(pool *pgxpool.Pool) ServiceRepository { return &serviceRepoPG{pool: pool} }

func (r *serviceRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const serviceCols = `id, group_id, name, price_cents, min_booking_ahead_days, created_at, updated_at`

func (r *serviceRepoPG) scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.GroupID, &s.Name, &s.PriceCents, &s.MinBookingAheadDays,
		&s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *serviceRepoPG) Create(ctx context.Context, s *Service) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment_service (id, group_id, name, price_cents, min_booking_ahead_days)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.GroupID, s.Name, s.PriceCents, s.MinBookingAheadDays)
	return err
}

func (r *serviceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	return r.scanService(r.conn(ctx).QueryRow(ctx,
		`SELECT `+serviceCols+` FROM appointment_service WHERE id = $1`, id))
}

func (r *serviceRepoPG) ServicesByIDs(ctx context.Context, ids []uuid.UUID) ([]*Service, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+serviceCols+` FROM appointment_service WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Service
	for rows.Next() {
		s, err := r.scanService(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *serviceRepoPG) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Service, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+serviceCols+` FROM appointment_service
		WHERE group_id = $1 ORDER BY name ASC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Service
	for rows.Next() {
		s, err := r.scanService(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *serviceRepoPG) Update(ctx context.Context, s *Service) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment_service SET group_id=$2, name=$3, price_cents=$4,
			min_booking_ahead_days=$5, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.GroupID, s.Name, s.PriceCents, s.MinBookingAheadDays)
	return err
}

func (r *serviceRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment_service WHERE id = $1`, id)
	return err
}

// =========== Corporate Code Repository ===========

type codeRepoPG struct{ pool *pgxpool.Pool }

func NewCorporateCodeRepoPG(pool *pgxpool.Pool) CorporateCodeRepository {
	return &codeRepoPG{pool: pool}
}

func (r *codeRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const codeCols = `id, code, organization, valid_from, valid_to, is_active, created_at, updated_at`

func (r *codeRepoPG) scanCode(row pgx.Row) (*CorporateCode, error) {
	var c CorporateCode
	err := row.Scan(&c.ID, &c.Code, &c.Organization, &c.ValidFrom, &c.ValidTo,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *codeRepoPG) Create(ctx context.Context, c *CorporateCode) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment_corporate_code (id, code, organization, valid_from, valid_to, is_active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.Code, c.Organization, c.ValidFrom, c.ValidTo, c.IsActive)
	return err
}

func (r *codeRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*CorporateCode, error) {
	return r.scanCode(r.conn(ctx).QueryRow(ctx,
		`SELECT `+codeCols+` FROM appointment_corporate_code WHERE id = $1`, id))
}

func (r *codeRepoPG) GetByCode(ctx context.Context, code string) (*CorporateCode, error) {
	return r.scanCode(r.conn(ctx).QueryRow(ctx,
		`SELECT `+codeCols+` FROM appointment_corporate_code WHERE code = $1`, code))
}

func (r *codeRepoPG) List(ctx context.Context, limit, offset int) ([]*CorporateCode, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment_corporate_code`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+codeCols+` FROM appointment_corporate_code
		ORDER BY code ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*CorporateCode
	for rows.Next() {
		c, err := r.scanCode(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *codeRepoPG) Update(ctx context.Context, c *CorporateCode) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment_corporate_code SET code=$2, organization=$3, valid_from=$4,
			valid_to=$5, is_active=$6, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Code, c.Organization, c.ValidFrom, c.ValidTo, c.IsActive)
	return err
}

func (r *codeRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment_corporate_code WHERE id = $1`, id)
	return err
}

// =========== Onsite Branch Repository ===========

type onsiteRepoPG struct{ pool *pgxpool.Pool }

func NewOnsiteBranchRepoPG(pool *pgxpool.Pool) OnsiteBranchRepository {
	return &onsiteRepoPG{pool: pool}
}

func (r *onsiteRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const onsiteCols = `id, corporate_code_id, branch_id, start_date, end_date, created_at, updated_at`

func (r *onsiteRepoPG) scanOnsite(row pgx.Row) (*OnsiteBranch, error) {
	var o OnsiteBranch
	err := row.Scan(&o.ID, &o.CorporateCodeID, &o.BranchID, &o.StartDate, &o.EndDate,
		&o.CreatedAt, &o.UpdatedAt)
	return &o, err
}

func (r *onsiteRepoPG) Create(ctx context.Context, o *OnsiteBranch) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment_onsite_branch (id, corporate_code_id, branch_id, start_date, end_date)
		VALUES ($1,$2,$3,$4,$5)`,
		o.ID, o.CorporateCodeID, o.BranchID, o.StartDate, o.EndDate)
	return err
}

func (r *onsiteRepoPG) GetByBranch(ctx context.Context, branchID uuid.UUID) (*OnsiteBranch, error) {
	return r.scanOnsite(r.conn(ctx).QueryRow(ctx,
		`SELECT `+onsiteCols+` FROM appointment_onsite_branch WHERE branch_id = $1`, branchID))
}

func (r *onsiteRepoPG) ListByCode(ctx context.Context, corporateCodeID uuid.UUID) ([]*OnsiteBranch, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+onsiteCols+` FROM appointment_onsite_branch
		WHERE corporate_code_id = $1 ORDER BY start_date ASC`, corporateCodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*OnsiteBranch
	for rows.Next() {
		o, err := r.scanOnsite(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

func (r *onsiteRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment_onsite_branch WHERE id = $1`, id)
	return err
}
