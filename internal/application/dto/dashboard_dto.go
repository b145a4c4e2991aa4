package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecentOrderDTO resumen de orden para el widget "órdenes recientes".
type RecentOrderDTO struct {
	ID        string          `json:"id"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	ItemCount int             `json:"itemCount"`
	CreatedAt time.Time       `json:"createdAt"`
}

// LowStockProductDTO producto con stock bajo el umbral.
type LowStockProductDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	StockQuantity int    `json:"stockQuantity"`
}

// AdminStatsDTO métricas de toda la tienda (sólo admin).
type AdminStatsDTO struct {
	TotalRevenue     decimal.Decimal      `json:"totalRevenue"`
	TotalStoreOrders int                  `json:"totalStoreOrders"`
	TotalProducts    int                  `json:"totalProducts"`
	TotalCustomers   int                  `json:"totalCustomers"`
	LowStockProducts []LowStockProductDTO `json:"lowStockProducts"`
}

// DashboardStatsDTO métricas del usuario; los campos de admin se aplanan cuando aplican.
type DashboardStatsDTO struct {
	TotalOrders  int              `json:"totalOrders"`
	TotalSpent   decimal.Decimal  `json:"totalSpent"`
	RecentOrders []RecentOrderDTO `json:"recentOrders"`
	*AdminStatsDTO
}
