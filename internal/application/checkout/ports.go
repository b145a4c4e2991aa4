package checkout

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una única transacción con repositorios atados a ella.
// Si fn devuelve error no se persiste ningún cambio.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		carts repository.CartRepository,
		products repository.ProductRepository,
		orders repository.OrderRepository,
	) error) error
}

// OrderPlacedHook se notifica después del commit. Sus errores se registran y no
// revierten la orden.
type OrderPlacedHook interface {
	OrderPlaced(ctx context.Context, order *entity.Order) error
}

// HookFunc adapta una función a OrderPlacedHook.
type HookFunc func(ctx context.Context, order *entity.Order) error

// OrderPlaced implementa OrderPlacedHook.
func (f HookFunc) OrderPlaced(ctx context.Context, order *entity.Order) error {
	return f(ctx, order)
}
