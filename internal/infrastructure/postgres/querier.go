package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier es lo común entre *pgxpool.Pool y pgx.Tx: los repositorios aceptan ambos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB agrega Begin: lo cumple *pgxpool.Pool y pgxmock.PgxPoolIface.
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// withTx ejecuta fn en la transacción en curso (inTx) o abre una propia si q es un pool.
func withTx(ctx context.Context, q Querier, inTx bool, fn func(q Querier) error) error {
	db, ok := q.(DB)
	if inTx || !ok {
		return fn(q)
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
