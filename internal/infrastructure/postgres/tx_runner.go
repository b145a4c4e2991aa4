package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/storefront-api/internal/application/checkout"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ checkout.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	db DB
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(db DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// El repositorio de productos de la tx bloquea con FOR UPDATE las filas que lee con GetMany.
func (r *TxRunner) Run(ctx context.Context, fn func(
	carts repository.CartRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	products := &ProductRepo{q: tx, lockRows: true}
	carts := &CartRepo{q: tx, inTx: true}
	orders := &OrderRepo{q: tx, inTx: true}

	if err := fn(carts, products, orders); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
