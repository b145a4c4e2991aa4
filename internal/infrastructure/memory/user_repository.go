package memory

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepository)(nil)

// UserRepository implementación en memoria de repository.UserRepository.
type UserRepository struct {
	s  *Store
	tx *state
}

// Create guarda el usuario; el username ya viene normalizado.
func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	return r.s.do(r.tx, func(st *state) error {
		if _, ok := st.usernames[u.Username]; ok {
			return domain.ErrUsernameTaken
		}
		cp := *u
		st.users[u.ID] = &cp
		st.usernames[u.Username] = u.ID
		return nil
	})
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.s.do(r.tx, func(st *state) error {
		if u, ok := st.users[id]; ok {
			cp := *u
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var id string
	_ = r.s.do(r.tx, func(st *state) error {
		id = st.usernames[username]
		return nil
	})
	if id == "" {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) CountByRole(_ context.Context, role string) (int, error) {
	n := 0
	err := r.s.do(r.tx, func(st *state) error {
		for _, u := range st.users {
			if u.Role == role {
				n++
			}
		}
		return nil
	})
	return n, err
}
