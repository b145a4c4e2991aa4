package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/storefront-api/internal/application/checkout"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ checkout.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta fn en una transacción multi-documento. WithTransaction
// reintenta ante errores transitorios (p. ej. write conflict entre checkouts).
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

func (r *TxRunner) Run(ctx context.Context, fn func(
	carts repository.CartRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
) error) error {
	session, err := r.store.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		db := r.store.db
		carts := &CartRepository{coll: db.Collection(CartsCollection), sess: sc}
		products := &ProductRepository{coll: db.Collection(ProductsCollection), sess: sc}
		orders := &OrderRepository{coll: db.Collection(OrdersCollection), sess: sc}
		return nil, fn(carts, products, orders)
	})
	return err
}
