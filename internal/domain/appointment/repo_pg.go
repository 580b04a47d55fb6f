package appointment

import (
	"context"
	"encoding/json"
	"time"

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, group_id, idx, status, start_datetime, duration_minutes,
	branch, services, guests, corporate_code, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var branchJSON, servicesJSON, guestsJSON []byte
	err := row.Scan(&a.ID, &a.GroupID, &a.Index, &a.Status, &a.StartDatetime,
		&a.DurationMinutes, &branchJSON, &servicesJSON, &guestsJSON,
		&a.CorporateCode, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(branchJSON, &a.Branch); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(servicesJSON, &a.Services); err != nil {
		return nil, err
	}
	if len(guestsJSON) > 0 {
		if err := json.Unmarshal(guestsJSON, &a.Guests); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	branchJSON, err := json.Marshal(a.Branch)
	if err != nil {
		return err
	}
	servicesJSON, err := json.Marshal(a.Services)
	if err != nil {
		return err
	}
	guestsJSON, err := json.Marshal(a.Guests)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, group_id, idx, status, start_datetime, duration_minutes,
			branch, services, guests, corporate_code)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		a.ID, a.GroupID, a.Index, a.Status, a.StartDatetime, a.DurationMinutes,
		branchJSON, servicesJSON, guestsJSON, a.CorporateCode)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment WHERE group_id = $1 ORDER BY idx`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) ListByBranch(ctx context.Context, branchID uuid.UUID, from, to time.Time, limit, offset int) ([]*Appointment, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE branch->>'id' = $1 AND start_datetime BETWEEN $2 AND $3`,
		branchID.String(), from, to).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE branch->>'id' = $1 AND start_datetime BETWEEN $2 AND $3
		ORDER BY start_datetime ASC LIMIT $4 OFFSET $5`,
		branchID.String(), from, to, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointment SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *repoPG) UpdateSchedule(ctx context.Context, id uuid.UUID, start time.Time) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointment SET start_datetime = $2, updated_at = NOW() WHERE id = $1`, id, start)
	return err
}

func (r *repoPG) DeleteAbandoned(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM appointment
		WHERE status IN ($1, $2) AND created_at < $3`,
		StatusPrepayment, StatusPaymentStarted, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
