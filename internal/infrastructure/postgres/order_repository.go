package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo órdenes en orders + order_items. Las órdenes no se modifican después de creadas.
type OrderRepo struct {
	q    Querier
	inTx bool
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste cabecera y líneas en la misma transacción.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	return withTx(ctx, r.q, r.inTx, func(q Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO orders (id, user_id, total, status, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			o.ID, o.UserID, o.Total, o.Status, o.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for i, it := range o.Items {
			_, err := q.Exec(ctx, `
				INSERT INTO order_items (order_id, line_no, product_id, name, unit_price, quantity, subtotal)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				o.ID, i, it.ProductID, it.Name, it.UnitPrice, it.Quantity, it.Subtotal)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
}

// GetByID devuelve (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var o entity.Order
	err := r.q.QueryRow(ctx, `SELECT id, user_id, total, status, created_at FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// List órdenes más recientes primero; UserID vacío = todas.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE ($1 = '' OR user_id = $1)`, f.UserID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = total
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, user_id, total, status, created_at
		FROM orders
		WHERE ($1 = '' OR user_id = $1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, f.UserID, limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *OrderRepo) loadItems(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT order_id, product_id, name, unit_price, quantity, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			orderID string
			it      entity.OrderItem
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity, &it.Subtotal); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

// Totals cantidad de órdenes y suma de totales; userID vacío = toda la tienda.
func (r *OrderRepo) Totals(ctx context.Context, userID string) (repository.OrderTotals, error) {
	out := repository.OrderTotals{Revenue: decimal.Zero}
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM orders WHERE ($1 = '' OR user_id = $1)`, userID).Scan(&out.Count, &out.Revenue)
	if err != nil {
		return repository.OrderTotals{}, fmt.Errorf("order totals: %w", err)
	}
	return out, nil
}
