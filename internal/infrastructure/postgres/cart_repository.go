package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.CartRepository = (*CartRepo)(nil)

// CartRepo carrito en dos tablas: carts (cabecera) y cart_items (líneas con posición).
type CartRepo struct {
	q    Querier
	inTx bool
}

// NewCartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCartRepository(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

// Get devuelve (nil, nil) si el usuario no tiene carrito.
func (r *CartRepo) Get(ctx context.Context, userID string) (*entity.Cart, error) {
	query := `
		SELECT c.updated_at, i.product_id, i.quantity
		FROM carts c
		LEFT JOIN cart_items i ON i.user_id = c.user_id
		WHERE c.user_id = $1
		ORDER BY i.position`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	defer rows.Close()

	var cart *entity.Cart
	for rows.Next() {
		var (
			updatedAt time.Time
			productID *string
			quantity  *int
		)
		if err := rows.Scan(&updatedAt, &productID, &quantity); err != nil {
			return nil, fmt.Errorf("scan cart: %w", err)
		}
		if cart == nil {
			cart = entity.NewCart(userID)
			cart.UpdatedAt = updatedAt
		}
		if productID != nil && quantity != nil {
			cart.Items = append(cart.Items, entity.CartItem{ProductID: *productID, Quantity: *quantity})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// Save reemplaza el carrito completo en una transacción (la de checkout si ya hay una).
func (r *CartRepo) Save(ctx context.Context, cart *entity.Cart) error {
	return withTx(ctx, r.q, r.inTx, func(q Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO carts (user_id, updated_at) VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET updated_at = EXCLUDED.updated_at`,
			cart.UserID, cart.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upsert cart: %w", err)
		}
		if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, cart.UserID); err != nil {
			return fmt.Errorf("clear cart items: %w", err)
		}
		for pos, it := range cart.Items {
			_, err := q.Exec(ctx, `
				INSERT INTO cart_items (user_id, product_id, quantity, position)
				VALUES ($1, $2, $3, $4)`,
				cart.UserID, it.ProductID, it.Quantity, pos)
			if err != nil {
				return fmt.Errorf("insert cart item: %w", err)
			}
		}
		return nil
	})
}
