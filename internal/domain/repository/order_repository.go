package repository

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// OrderFilter listado de órdenes. UserID vacío = todas.
type OrderFilter struct {
	UserID string
	Limit  int
	Offset int
}

// OrderTotals agregados para el dashboard.
type OrderTotals struct {
	Count   int
	Revenue decimal.Decimal
}

// OrderRepository puerto de persistencia para Order.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// List ordena por fecha de creación descendente y devuelve el total sin paginar.
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, int, error)
	// Totals agrega cantidad y monto; userID vacío = toda la tienda.
	Totals(ctx context.Context, userID string) (OrderTotals, error)
}
