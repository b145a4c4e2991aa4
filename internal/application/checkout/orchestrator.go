// Package checkout convierte el carrito en una orden de forma atómica.
package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// Orchestrator coordina carrito, stock y orden en una sola transacción.
type Orchestrator struct {
	tx    TxRunner
	hooks []OrderPlacedHook
	log   *logger.Logger
	now   func() time.Time
}

// NewOrchestrator construye el orquestador. hooks puede ser vacío; log llega ya etiquetado.
func NewOrchestrator(tx TxRunner, log *logger.Logger, hooks ...OrderPlacedHook) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		tx:    tx,
		hooks: hooks,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Checkout valida todas las líneas antes de tocar el stock; si alguna falla
// no hay decrementos, no se crea orden y el carrito queda intacto.
func (o *Orchestrator) Checkout(ctx context.Context, userID string) (*entity.Order, error) {
	var order *entity.Order
	err := o.tx.Run(ctx, func(carts repository.CartRepository, products repository.ProductRepository, orders repository.OrderRepository) error {
		cart, err := carts.Get(ctx, userID)
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			return domain.ErrEmptyCart
		}

		ids := make([]string, 0, len(cart.Items))
		for _, it := range cart.Items {
			ids = append(ids, it.ProductID)
		}
		locked, err := products.GetMany(ctx, ids)
		if err != nil {
			return err
		}

		items := make([]entity.OrderItem, 0, len(cart.Items))
		total := decimal.Zero
		for _, it := range cart.Items {
			p, ok := locked[it.ProductID]
			if !ok {
				return domain.ErrProductNotFound
			}
			if !entity.ValidQuantity(it.Quantity) {
				return domain.Invalid("quantity", "cantidad fuera de rango en el carrito")
			}
			if !p.CanFulfil(it.Quantity) {
				return &domain.InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   it.Quantity,
					Available:   p.Stock,
				}
			}
			subtotal := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			items = append(items, entity.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				UnitPrice: p.Price,
				Quantity:  it.Quantity,
				Subtotal:  subtotal,
			})
			total = total.Add(subtotal)
		}

		for _, it := range items {
			if err := products.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		order = &entity.Order{
			ID:        uuid.New().String(),
			UserID:    userID,
			Items:     items,
			Total:     total,
			Status:    entity.OrderStatusPlaced,
			CreatedAt: o.now(),
		}
		if err := orders.Create(ctx, order); err != nil {
			return err
		}

		cart.Clear()
		cart.UpdatedAt = o.now()
		return carts.Save(ctx, cart)
	})
	if err != nil {
		return nil, err
	}

	o.log.Info().Str("order_id", order.ID).Str("user_id", userID).
		Str("total", order.Total.StringFixed(2)).Int("items", order.ItemCount()).Msg("orden creada")
	o.notify(ctx, order)
	return order, nil
}

func (o *Orchestrator) notify(ctx context.Context, order *entity.Order) {
	for _, h := range o.hooks {
		if err := h.OrderPlaced(ctx, order); err != nil {
			o.log.Warn().Err(err).Str("order_id", order.ID).Msg("notificación post-checkout falló")
		}
	}
}
