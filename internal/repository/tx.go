package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartcheckout/internal/db"
)

// submitTxOptions keeps the order insert and the cart cleanup atomic. Read
// committed is enough: the cleanup deletes by product, so lines added
// concurrently are left alone.
var submitTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

// withTx runs fn with queries bound to a fresh transaction on pool. pgx
// commits when fn succeeds and rolls back otherwise. A nil pool means the
// repository was built on a caller-owned transaction and q is already bound.
func withTx[T any](ctx context.Context, pool *pgxpool.Pool, q *db.Queries, opts pgx.TxOptions, fn func(q *db.Queries) (T, error)) (T, error) {
	if pool == nil {
		return fn(q)
	}

	var result T
	err := pgx.BeginTxFunc(ctx, pool, opts, func(tx pgx.Tx) error {
		var err error
		result, err = fn(q.WithTx(tx))
		return err
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("pgx.BeginTxFunc: %w", err)
	}

	return result, nil
}
