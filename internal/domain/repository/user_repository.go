package repository

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// UserRepository puerto de persistencia para User (Credential Store).
// Los Get devuelven (nil, nil) cuando el usuario no existe.
type UserRepository interface {
	// Create devuelve domain.ErrUsernameTaken si el username ya existe.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	CountByRole(ctx context.Context, role string) (int, error)
}
