package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepository)(nil)

// OrderRepository implementación en memoria de repository.OrderRepository.
type OrderRepository struct {
	s  *Store
	tx *state
}

func cloneOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	return &cp
}

func (r *OrderRepository) Create(_ context.Context, o *entity.Order) error {
	return r.s.do(r.tx, func(st *state) error {
		st.orders = append(st.orders, cloneOrder(o))
		return nil
	})
}

func (r *OrderRepository) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.s.do(r.tx, func(st *state) error {
		for _, o := range st.orders {
			if o.ID == id {
				out = cloneOrder(o)
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *OrderRepository) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	var matched []*entity.Order
	_ = r.s.do(r.tx, func(st *state) error {
		for _, o := range st.orders {
			if f.UserID == "" || o.UserID == f.UserID {
				matched = append(matched, cloneOrder(o))
			}
		}
		return nil
	})
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	return paginate(matched, f.Limit, f.Offset), total, nil
}

func (r *OrderRepository) Totals(_ context.Context, userID string) (repository.OrderTotals, error) {
	out := repository.OrderTotals{Revenue: decimal.Zero}
	err := r.s.do(r.tx, func(st *state) error {
		for _, o := range st.orders {
			if userID == "" || o.UserID == userID {
				out.Count++
				out.Revenue = out.Revenue.Add(o.Total)
			}
		}
		return nil
	})
	return out, err
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
