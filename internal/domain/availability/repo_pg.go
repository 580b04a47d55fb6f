package availability

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

type ledgerRepoPG struct{ pool *pgxpool.Pool }

func NewLedgerRepoPG(pool *pgxpool.Pool) LedgerRepository { return &ledgerRepoPG{pool: pool} }

func (r *ledgerRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

// Increment is the atomic capacity check: the conditional upsert only lands
// when the resulting count stays within max, so two concurrent confirmations
// of the last slot cannot both succeed. Zero rows affected means the slot is
// full.
func (r *ledgerRepoPG) Increment(ctx context.Context, branchID, calendarID string, at time.Time, delta, max int) error {
	if delta > max {
		return ErrSlotFull
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment_count (id, sgimed_branch_id, sgimed_calendar_id, slot_time, count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sgimed_branch_id, sgimed_calendar_id, slot_time)
		DO UPDATE SET count = appointment_count.count + $5, updated_at = NOW()
		WHERE appointment_count.count + $5 <= $6`,
		uuid.New(), branchID, calendarID, at, delta, max)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotFull
	}
	return nil
}

func (r *ledgerRepoPG) Decrement(ctx context.Context, branchID, calendarID string, at time.Time, delta int) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment_count
		SET count = GREATEST(count - $4, 0), updated_at = NOW()
		WHERE sgimed_branch_id = $1 AND sgimed_calendar_id = $2 AND slot_time = $3`,
		branchID, calendarID, at, delta)
	return err
}

func (r *ledgerRepoPG) CountsAtLeast(ctx context.Context, branchID, calendarID string, from, to time.Time, min int) (map[time.Time]int, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT slot_time, count FROM appointment_count
		WHERE sgimed_branch_id = $1 AND sgimed_calendar_id = $2
		  AND slot_time BETWEEN $3 AND $4 AND count >= $5`,
		branchID, calendarID, from, to, min)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[time.Time]int)
	for rows.Next() {
		var at time.Time
		var count int
		if err := rows.Scan(&at, &count); err != nil {
			return nil, err
		}
		counts[at] = count
	}
	return counts, rows.Err()
}
