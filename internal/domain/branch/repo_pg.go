package branch

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

// =========== Branch Repository ===========

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const branchCols = `id, name, code, type, address, sgimed_branch_id, sgimed_calendar_id,
	is_active, created_at, updated_at`

func (r *repoPG) scanBranch(row pgx.Row) (*Branch, error) {
	var b Branch
	err := row.Scan(&b.ID, &b.Name, &b.Code, &b.Type, &b.Address,
		&b.SGiMedBranchID, &b.SGiMedCalendarID, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *repoPG) Create(ctx context.Context, b *Branch) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO branch (id, name, code, type, address, sgimed_branch_id, sgimed_calendar_id, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		b.ID, b.Name, b.Code, b.Type, b.Address, b.SGiMedBranchID, b.SGiMedCalendarID, b.IsActive)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Branch, error) {
	return r.scanBranch(r.conn(ctx).QueryRow(ctx, `SELECT `+branchCols+` FROM branch WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Branch, error) {
	return r.scanBranch(r.conn(ctx).QueryRow(ctx, `SELECT `+branchCols+` FROM branch WHERE code = $1`, code))
}

func (r *repoPG) Update(ctx context.Context, b *Branch) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE branch SET name=$2, code=$3, type=$4, address=$5, sgimed_branch_id=$6,
			sgimed_calendar_id=$7, is_active=$8, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.Name, b.Code, b.Type, b.Address, b.SGiMedBranchID, b.SGiMedCalendarID, b.IsActive)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM branch WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Branch, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM branch`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+branchCols+` FROM branch ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Branch
	for rows.Next() {
		b, err := r.scanBranch(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, nil
}

// =========== Operating Hour Repository ===========

type hourRepoPG struct{ pool *pgxpool.Pool }

func NewOperatingHourRepoPG(pool *pgxpool.Pool) OperatingHourRepository {
	return &hourRepoPG{pool: pool}
}

func (r *hourRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const hourCols = `id, branch_id, day_of_week, start_minute, end_minute, cutoff_minutes, created_at, updated_at`

func (r *hourRepoPG) scanHour(row pgx.Row) (*OperatingHour, error) {
	var oh OperatingHour
	err := row.Scan(&oh.ID, &oh.BranchID, &oh.Day, &oh.StartMinute, &oh.EndMinute,
		&oh.CutoffMinutes, &oh.CreatedAt, &oh.UpdatedAt)
	return &oh, err
}

func (r *hourRepoPG) Create(ctx context.Context, oh *OperatingHour) error {
	oh.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO operating_hour (id, branch_id, day_of_week, start_minute, end_minute, cutoff_minutes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		oh.ID, oh.BranchID, oh.Day, oh.StartMinute, oh.EndMinute, oh.CutoffMinutes)
	return err
}

func (r *hourRepoPG) Update(ctx context.Context, oh *OperatingHour) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE operating_hour SET day_of_week=$2, start_minute=$3, end_minute=$4,
			cutoff_minutes=$5, updated_at=NOW()
		WHERE id = $1`,
		oh.ID, oh.Day, oh.StartMinute, oh.EndMinute, oh.CutoffMinutes)
	return err
}

func (r *hourRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM operating_hour WHERE id = $1`, id)
	return err
}

func (r *hourRepoPG) OperatingHoursByBranch(ctx context.Context, branchID uuid.UUID) ([]*OperatingHour, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+hourCols+` FROM operating_hour
		WHERE branch_id = $1 ORDER BY day_of_week, start_minute`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*OperatingHour
	for rows.Next() {
		oh, err := r.scanHour(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, oh)
	}
	return items, rows.Err()
}

// =========== Appointment Operating Hour Repository ===========

type apptHourRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentHourRepoPG(pool *pgxpool.Pool) AppointmentHourRepository {
	return &apptHourRepoPG{pool: pool}
}

func (r *apptHourRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptHourCols = `id, branch_id, day_of_week, start_minute, end_minute, cutoff_minutes,
	max_bookings, created_at, updated_at`

func (r *apptHourRepoPG) scanHour(row pgx.Row) (*AppointmentOperatingHour, error) {
	var ah AppointmentOperatingHour
	err := row.Scan(&ah.ID, &ah.BranchID, &ah.Day, &ah.StartMinute, &ah.EndMinute,
		&ah.CutoffMinutes, &ah.MaxBookings, &ah.CreatedAt, &ah.UpdatedAt)
	return &ah, err
}

func (r *apptHourRepoPG) Create(ctx context.Context, ah *AppointmentOperatingHour) error {
	ah.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment_operating_hour (id, branch_id, day_of_week, start_minute,
			end_minute, cutoff_minutes, max_bookings)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		ah.ID, ah.BranchID, ah.Day, ah.StartMinute, ah.EndMinute, ah.CutoffMinutes, ah.MaxBookings)
	return err
}

func (r *apptHourRepoPG) Update(ctx context.Context, ah *AppointmentOperatingHour) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment_operating_hour SET day_of_week=$2, start_minute=$3, end_minute=$4,
			cutoff_minutes=$5, max_bookings=$6, updated_at=NOW()
		WHERE id = $1`,
		ah.ID, ah.Day, ah.StartMinute, ah.EndMinute, ah.CutoffMinutes, ah.MaxBookings)
	return err
}

func (r *apptHourRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment_operating_hour WHERE id = $1`, id)
	return err
}

func (r *apptHourRepoPG) AppointmentHoursByBranch(ctx context.Context, branchID uuid.UUID) ([]*AppointmentOperatingHour, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptHourCols+` FROM appointment_operating_hour
		WHERE branch_id = $1 ORDER BY day_of_week, start_minute`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*AppointmentOperatingHour
	for rows.Next() {
		ah, err := r.scanHour(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ah)
	}
	return items, rows.Err()
}
