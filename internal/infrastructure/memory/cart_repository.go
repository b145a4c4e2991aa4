package memory

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.CartRepository = (*CartRepository)(nil)

// CartRepository implementación en memoria de repository.CartRepository.
type CartRepository struct {
	s  *Store
	tx *state
}

func (r *CartRepository) Get(_ context.Context, userID string) (*entity.Cart, error) {
	var out *entity.Cart
	err := r.s.do(r.tx, func(st *state) error {
		out = st.carts[userID].Clone()
		return nil
	})
	return out, err
}

func (r *CartRepository) Save(_ context.Context, c *entity.Cart) error {
	return r.s.do(r.tx, func(st *state) error {
		st.carts[c.UserID] = c.Clone()
		return nil
	})
}
