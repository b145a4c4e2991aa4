package usecase

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/application/auth"
	"github.com/jhoicas/storefront-api/internal/application/cart"
	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

// ReceiptGenerator genera el comprobante PDF de una orden.
type ReceiptGenerator interface {
	GenerateReceipt(order *entity.Order, customer *entity.User) ([]byte, error)
}

// OrderUseCase consultas de órdenes, reorder y comprobante.
type OrderUseCase struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	cart     *cart.UseCase
	receipts ReceiptGenerator
}

// NewOrderUseCase construye el caso de uso. receipts puede ser nil (comprobante deshabilitado).
func NewOrderUseCase(orders repository.OrderRepository, users repository.UserRepository, cartUC *cart.UseCase, receipts ReceiptGenerator) *OrderUseCase {
	return &OrderUseCase{orders: orders, users: users, cart: cartUC, receipts: receipts}
}

// List lista órdenes; userID vacío = todas (sólo admin llega con vacío).
func (uc *OrderUseCase) List(ctx context.Context, userID string, limit, offset int) (*dto.OrderListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	list, total, err := uc.orders.List(ctx, repository.OrderFilter{UserID: userID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	out := &dto.OrderListResponse{
		Orders: make([]dto.OrderResponse, 0, len(list)),
		Page:   dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}
	for _, o := range list {
		out.Orders = append(out.Orders, *ToOrderResponse(o))
	}
	return out, nil
}

// Get devuelve la orden si pertenece a la identidad o si es admin.
// La orden de otro usuario se reporta como inexistente.
func (uc *OrderUseCase) Get(ctx context.Context, id auth.Identity, orderID string) (*dto.OrderResponse, error) {
	o, err := uc.load(ctx, id, orderID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}

// Reorder agrega al carrito las líneas de una orden previa. Los productos que
// ya no existen en el catálogo se omiten.
func (uc *OrderUseCase) Reorder(ctx context.Context, id auth.Identity, orderID string) (*dto.CartResponse, error) {
	o, err := uc.load(ctx, id, orderID)
	if err != nil {
		return nil, err
	}
	items := make([]entity.CartItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, entity.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return uc.cart.AddItems(ctx, id.UserID, items)
}

// Receipt genera el PDF de la orden.
func (uc *OrderUseCase) Receipt(ctx context.Context, id auth.Identity, orderID string) ([]byte, error) {
	if uc.receipts == nil {
		return nil, domain.ErrNotFound
	}
	o, err := uc.load(ctx, id, orderID)
	if err != nil {
		return nil, err
	}
	customer, err := uc.users.GetByID(ctx, o.UserID)
	if err != nil {
		return nil, err
	}
	return uc.receipts.GenerateReceipt(o, customer)
}

func (uc *OrderUseCase) load(ctx context.Context, id auth.Identity, orderID string) (*entity.Order, error) {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil || (o.UserID != id.UserID && !id.IsAdmin()) {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// ToOrderResponse convierte la entidad a DTO.
func ToOrderResponse(o *entity.Order) *dto.OrderResponse {
	out := &dto.OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Items:     make([]dto.OrderItemResponse, 0, len(o.Items)),
		ItemCount: o.ItemCount(),
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, dto.OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
		})
	}
	return out
}
