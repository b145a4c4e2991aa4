package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto (admin).
type CreateProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Category      string          `json:"category"`
	ImageURL      string          `json:"imageUrl"`
}

// UpdateProductRequest actualización parcial; campos nil no se tocan.
type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stockQuantity"`
	Category      *string          `json:"category"`
	ImageURL      *string          `json:"imageUrl"`
}

// ProductQuery parámetros de listado del catálogo (query string).
type ProductQuery struct {
	Category string `query:"category"`
	Search   string `query:"search"`
	MinPrice string `query:"minPrice"`
	MaxPrice string `query:"maxPrice"`
	Sort     string `query:"sort"`
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Category      string          `json:"category"`
	ImageURL      string          `json:"imageUrl"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ProductListResponse página del catálogo.
type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}
