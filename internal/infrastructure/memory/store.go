// Package memory implementa los repositorios en memoria (STORE_DRIVER=memory).
// Todo el estado vive detrás de un único mutex; una transacción trabaja sobre
// una copia y la publica sólo si fn termina sin error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

type state struct {
	users     map[string]*entity.User
	usernames map[string]string // username normalizado -> id
	products  map[string]*entity.Product
	carts     map[string]*entity.Cart
	orders    []*entity.Order
}

func newState() *state {
	return &state{
		users:     map[string]*entity.User{},
		usernames: map[string]string{},
		products:  map[string]*entity.Product{},
		carts:     map[string]*entity.Cart{},
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.users {
		u := *v
		out.users[k] = &u
	}
	for k, v := range s.usernames {
		out.usernames[k] = v
	}
	for k, v := range s.products {
		p := *v
		out.products[k] = &p
	}
	for k, v := range s.carts {
		out.carts[k] = v.Clone()
	}
	// las órdenes son inmutables: basta copiar el slice
	out.orders = append(make([]*entity.Order, 0, len(s.orders)), s.orders...)
	return out
}

// Store contenedor del estado compartido por todos los repositorios.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// do ejecuta fn con el estado: tx != nil significa que el lock ya lo tiene Run.
func (s *Store) do(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Users repositorio de usuarios fuera de transacción.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

// Carts repositorio de carritos fuera de transacción.
func (s *Store) Carts() *CartRepository { return &CartRepository{s: s} }

// Orders repositorio de órdenes fuera de transacción.
func (s *Store) Orders() *OrderRepository { return &OrderRepository{s: s} }

// TxRunner serializa las transacciones sobre el store.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run toma el lock del store durante toda la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(
	carts repository.CartRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx := r.s.st.clone()
	if err := fn(
		&CartRepository{s: r.s, tx: tx},
		&ProductRepository{s: r.s, tx: tx},
		&OrderRepository{s: r.s, tx: tx},
	); err != nil {
		return err
	}
	r.s.st = tx
	return nil
}
