package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de orden. En este alcance una orden sólo se crea; no cambia de estado.
const (
	OrderStatusPlaced = "placed"
)

// OrderItem snapshot de una línea al momento del checkout.
type OrderItem struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
}

// Order orden creada por checkout; inmutable.
type Order struct {
	ID        string
	UserID    string
	Items     []OrderItem
	Total     decimal.Decimal
	Status    string
	CreatedAt time.Time
}

// ItemCount suma de unidades de la orden.
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
