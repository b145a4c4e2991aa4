package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/storefront-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetStats devuelve las métricas del usuario; para admin agrega las de la tienda.
// GET /api/dashboard/stats
//
// Respuesta: DashboardStatsDTO (totalOrders, totalSpent, recentOrders[5] y, si es
// admin, totalRevenue, totalStoreOrders, totalProducts, totalCustomers, lowStockProducts).
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	stats, err := h.uc.GetStats(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
