package repository

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// CartRepository puerto de persistencia para Cart (uno por usuario).
type CartRepository interface {
	// Get devuelve (nil, nil) si el usuario nunca tuvo carrito.
	Get(ctx context.Context, userID string) (*entity.Cart, error)
	// Save crea o reemplaza el carrito completo (líneas en orden).
	Save(ctx context.Context, cart *entity.Cart) error
}
