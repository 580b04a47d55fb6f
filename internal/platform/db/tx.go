package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const connKey contextKey = "db_conn"

// WithTx runs fn inside a transaction. The transaction is injected into the
// context so that repositories reached through fn share it via ConnFromContext.
// Commit happens only if fn returns nil; any error rolls back.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, connKey, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ConnFromContext retrieves a transaction previously injected by WithTx, or
// nil when the caller is not inside one.
func ConnFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(connKey).(pgx.Tx)
	return tx
}
