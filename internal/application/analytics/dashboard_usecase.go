// Package analytics contiene el caso de uso de estadísticas del dashboard.
package analytics

import (
	"context"
	"fmt"

	"github.com/jhoicas/storefront-api/internal/application/auth"
	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

const (
	dashboardRecentOrders = 5  // órdenes en el widget "recientes"
	dashboardLowStock     = 10 // productos en el widget de stock bajo
)

// DashboardUseCase arma las métricas del usuario y, si es admin, las de toda la tienda.
// Sólo lectura: delega todo en los repositorios.
type DashboardUseCase struct {
	orders            repository.OrderRepository
	products          repository.ProductRepository
	users             repository.UserRepository
	lowStockThreshold int
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	lowStockThreshold int,
) *DashboardUseCase {
	return &DashboardUseCase{orders: orders, products: products, users: users, lowStockThreshold: lowStockThreshold}
}

// GetStats construye el DashboardStatsDTO para la identidad.
//
// Consultas en paralelo:
//  1. Totals(usuario)         → TotalOrders + TotalSpent
//  2. List(usuario, top 5)    → RecentOrders
//  3. sólo admin: Totals(tienda), Count(productos), CountByRole(customer), ListLowStock
func (uc *DashboardUseCase) GetStats(ctx context.Context, id auth.Identity) (*dto.DashboardStatsDTO, error) {
	type totalsResult struct {
		totals repository.OrderTotals
		err    error
	}
	type recentResult struct {
		orders []*entity.Order
		err    error
	}
	type adminResult struct {
		stats *dto.AdminStatsDTO
		err   error
	}

	totalsCh := make(chan totalsResult, 1)
	recentCh := make(chan recentResult, 1)
	adminCh := make(chan adminResult, 1)

	go func() {
		t, err := uc.orders.Totals(ctx, id.UserID)
		totalsCh <- totalsResult{t, err}
	}()
	go func() {
		list, _, err := uc.orders.List(ctx, repository.OrderFilter{UserID: id.UserID, Limit: dashboardRecentOrders})
		recentCh <- recentResult{list, err}
	}()
	if id.IsAdmin() {
		go func() {
			stats, err := uc.adminStats(ctx)
			adminCh <- adminResult{stats, err}
		}()
	} else {
		adminCh <- adminResult{}
	}

	totals := <-totalsCh
	recent := <-recentCh
	admin := <-adminCh

	if totals.err != nil {
		return nil, fmt.Errorf("dashboard: totales del usuario: %w", totals.err)
	}
	if recent.err != nil {
		return nil, fmt.Errorf("dashboard: órdenes recientes: %w", recent.err)
	}
	if admin.err != nil {
		return nil, fmt.Errorf("dashboard: métricas de tienda: %w", admin.err)
	}

	out := &dto.DashboardStatsDTO{
		TotalOrders:   totals.totals.Count,
		TotalSpent:    totals.totals.Revenue.Round(2),
		RecentOrders:  make([]dto.RecentOrderDTO, 0, len(recent.orders)),
		AdminStatsDTO: admin.stats,
	}
	for _, o := range recent.orders {
		out.RecentOrders = append(out.RecentOrders, dto.RecentOrderDTO{
			ID:        o.ID,
			Total:     o.Total,
			Status:    o.Status,
			ItemCount: o.ItemCount(),
			CreatedAt: o.CreatedAt,
		})
	}
	return out, nil
}

func (uc *DashboardUseCase) adminStats(ctx context.Context) (*dto.AdminStatsDTO, error) {
	store, err := uc.orders.Totals(ctx, "")
	if err != nil {
		return nil, err
	}
	products, err := uc.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := uc.users.CountByRole(ctx, entity.RoleCustomer)
	if err != nil {
		return nil, err
	}
	low, err := uc.products.ListLowStock(ctx, uc.lowStockThreshold, dashboardLowStock)
	if err != nil {
		return nil, err
	}
	out := &dto.AdminStatsDTO{
		TotalRevenue:     store.Revenue.Round(2),
		TotalStoreOrders: store.Count,
		TotalProducts:    products,
		TotalCustomers:   customers,
		LowStockProducts: make([]dto.LowStockProductDTO, 0, len(low)),
	}
	for _, p := range low {
		out.LowStockProducts = append(out.LowStockProducts, dto.LowStockProductDTO{ID: p.ID, Name: p.Name, StockQuantity: p.Stock})
	}
	return out, nil
}
