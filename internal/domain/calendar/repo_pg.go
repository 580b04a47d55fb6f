package calendar

import (
	"context"
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

// =========== Public Holiday Repository ===========

type holidayRepoPG struct{ pool *pgxpool.Pool }

func NewHolidayRepoPG(pool *pgxpool.Pool) HolidayRepository { return &holidayRepoPG{pool: pool} }

func (r *holidayRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *holidayRepoPG) Create(ctx context.Context, h *PublicHoliday) error {
	h.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO public_holiday (id, holiday_date, remarks) VALUES ($1,$2,$3)`,
		h.ID, h.Date, h.Remarks)
	return err
}

func (r *holidayRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM public_holiday WHERE id = $1`, id)
	return err
}

func (r *holidayRepoPG) List(ctx context.Context, limit, offset int) ([]*PublicHoliday, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM public_holiday`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, holiday_date, remarks, created_at FROM public_holiday
		ORDER BY holiday_date ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PublicHoliday
	for rows.Next() {
		var h PublicHoliday
		if err := rows.Scan(&h.ID, &h.Date, &h.Remarks, &h.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &h)
	}
	return items, total, nil
}

func (r *holidayRepoPG) HolidaysInRange(ctx context.Context, from, to time.Time) ([]*PublicHoliday, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, holiday_date, remarks, created_at FROM public_holiday
		WHERE holiday_date >= $1::date AND holiday_date <= $2::date
		ORDER BY holiday_date ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*PublicHoliday
	for rows.Next() {
		var h PublicHoliday
		if err := rows.Scan(&h.ID, &h.Date, &h.Remarks, &h.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &h)
	}
	return items, rows.Err()
}

// =========== Blockoff Repository ===========

type blockoffRepoPG struct{ pool *pgxpool.Pool }

func NewBlockoffRepoPG(pool *pgxpool.Pool) BlockoffRepository { return &blockoffRepoPG{pool: pool} }

func (r *blockoffRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const blockoffCols = `id, blockoff_date, start_minute, end_minute, enabled, deleted, allow_toggle,
	created_at, updated_at`

func (r *blockoffRepoPG) scanBlockoff(row pgx.Row) (*Blockoff, error) {
	var b Blockoff
	err := row.Scan(&b.ID, &b.Date, &b.StartMinute, &b.EndMinute, &b.Enabled, &b.Deleted,
		&b.AllowToggle, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *blockoffRepoPG) loadBranches(ctx context.Context, b *Blockoff) error {
	rows, err := r.conn(ctx).Query(ctx, `SELECT branch_id FROM blockoff_branch WHERE blockoff_id = $1`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return err
		}
		b.BranchIDs = append(b.BranchIDs, id)
	}
	return rows.Err()
}

func (r *blockoffRepoPG) Create(ctx context.Context, b *Blockoff) error {
	b.ID = uuid.New()
	conn := r.conn(ctx)
	_, err := conn.Exec(ctx, `
		INSERT INTO blockoff (id, blockoff_date, start_minute, end_minute, enabled, deleted, allow_toggle)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		b.ID, b.Date, b.StartMinute, b.EndMinute, b.Enabled, b.Deleted, b.AllowToggle)
	if err != nil {
		return err
	}
	for _, branchID := range b.BranchIDs {
		if _, err := conn.Exec(ctx, `
			INSERT INTO blockoff_branch (blockoff_id, branch_id) VALUES ($1,$2)`, b.ID, branchID); err != nil {
			return err
		}
	}
	return nil
}

func (r *blockoffRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Blockoff, error) {
	b, err := r.scanBlockoff(r.conn(ctx).QueryRow(ctx, `SELECT `+blockoffCols+` FROM blockoff WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadBranches(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *blockoffRepoPG) Update(ctx context.Context, b *Blockoff) error {
	conn := r.conn(ctx)
	_, err := conn.Exec(ctx, `
		UPDATE blockoff SET blockoff_date=$2, start_minute=$3, end_minute=$4, enabled=$5,
			allow_toggle=$6, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.Date, b.StartMinute, b.EndMinute, b.Enabled, b.AllowToggle)
	if err != nil {
		return err
	}
	if b.BranchIDs != nil {
		if _, err := conn.Exec(ctx, `DELETE FROM blockoff_branch WHERE blockoff_id = $1`, b.ID); err != nil {
			return err
		}
		for _, branchID := range b.BranchIDs {
			if _, err := conn.Exec(ctx, `
				INSERT INTO blockoff_branch (blockoff_id, branch_id) VALUES ($1,$2)`, b.ID, branchID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *blockoffRepoPG) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE blockoff SET deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *blockoffRepoPG) List(ctx context.Context, limit, offset int) ([]*Blockoff, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM blockoff WHERE deleted = FALSE`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+blockoffCols+` FROM blockoff WHERE deleted = FALSE
		ORDER BY blockoff_date DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Blockoff
	for rows.Next() {
		b, err := r.scanBlockoff(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	rows.Close()
	for _, b := range items {
		if err := r.loadBranches(ctx, b); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

func (r *blockoffRepoPG) BlockoffsInRange(ctx context.Context, branchID uuid.UUID, from, to time.Time) ([]*Blockoff, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT b.id, b.blockoff_date, b.start_minute, b.end_minute, b.enabled, b.deleted,
			b.allow_toggle, b.created_at, b.updated_at
		FROM blockoff b
		JOIN blockoff_branch bb ON bb.blockoff_id = b.id
		WHERE bb.branch_id = $1 AND b.enabled = TRUE AND b.deleted = FALSE
			AND b.blockoff_date >= $2::date AND b.blockoff_date <= $3::date
		ORDER BY b.blockoff_date ASC`, branchID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Blockoff
	for rows.Next() {
		b, err := r.scanBlockoff(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
