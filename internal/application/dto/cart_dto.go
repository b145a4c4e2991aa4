package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItemRequest entrada para agregar o fijar la cantidad de una línea.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartItemResponse línea del carrito enriquecida con datos actuales del producto.
// Available es false si el producto fue eliminado del catálogo.
type CartItemResponse struct {
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	ImageURL      string          `json:"imageUrl"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Quantity      int             `json:"quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Available     bool            `json:"available"`
}

// CartResponse carrito completo.
type CartResponse struct {
	UserID    string             `json:"userId"`
	Items     []CartItemResponse `json:"items"`
	ItemCount int                `json:"itemCount"`
	Total     decimal.Decimal    `json:"total"`
	UpdatedAt *time.Time         `json:"updatedAt,omitempty"`
}
