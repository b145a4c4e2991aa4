package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemResponse línea de la orden (precio congelado al checkout).
type OrderItemResponse struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"userId"`
	Items     []OrderItemResponse `json:"items"`
	ItemCount int                 `json:"itemCount"`
	Total     decimal.Decimal     `json:"total"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
}

// OrderListResponse lista paginada de órdenes.
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Page   PageResponse    `json:"page"`
}
