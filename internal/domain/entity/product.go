package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo.
// Stock nunca es negativo: sólo se descuenta vía checkout con decremento condicional.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanFulfil indica si hay stock para qty unidades. qty fuera de rango nunca se cubre.
func (p *Product) CanFulfil(qty int) bool {
	return ValidQuantity(qty) && p.Stock >= qty
}
