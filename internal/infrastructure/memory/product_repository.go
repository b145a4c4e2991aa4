package memory

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implementación en memoria de repository.ProductRepository.
type ProductRepository struct {
	s  *Store
	tx *state
}

func cloneProduct(p *entity.Product) *entity.Product {
	cp := *p
	return &cp
}

func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	return r.s.do(r.tx, func(st *state) error {
		st.products[p.ID] = cloneProduct(p)
		return nil
	})
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.do(r.tx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = cloneProduct(p)
		}
		return nil
	})
	return out, err
}

func (r *ProductRepository) GetMany(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	err := r.s.do(r.tx, func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out[id] = cloneProduct(p)
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepository) Update(_ context.Context, p *entity.Product) error {
	return r.s.do(r.tx, func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrProductNotFound
		}
		next := cloneProduct(p)
		next.Stock = cur.Stock
		next.CreatedAt = cur.CreatedAt
		st.products[p.ID] = next
		return nil
	})
}

func (r *ProductRepository) SetStock(_ context.Context, id string, stock int) error {
	return r.s.do(r.tx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		p.Stock = stock
		return nil
	})
}

func (r *ProductRepository) Delete(_ context.Context, id string) error {
	return r.s.do(r.tx, func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrProductNotFound
		}
		delete(st.products, id)
		return nil
	})
}

func (r *ProductRepository) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	fold := cases.Fold()
	category := fold.String(f.Category)
	search := fold.String(strings.TrimSpace(f.Search))

	var matched []*entity.Product
	_ = r.s.do(r.tx, func(st *state) error {
		for _, p := range st.products {
			if category != "" && fold.String(p.Category) != category {
				continue
			}
			if search != "" &&
				!strings.Contains(fold.String(p.Name), search) &&
				!strings.Contains(fold.String(p.Description), search) {
				continue
			}
			if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
				continue
			}
			if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
				continue
			}
			matched = append(matched, cloneProduct(p))
		}
		return nil
	})

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch f.Sort {
		case repository.SortPriceAsc:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case repository.SortPriceDesc:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case repository.SortNameAsc:
			if a.Name != b.Name {
				return fold.String(a.Name) < fold.String(b.Name)
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})
	total := len(matched)
	return paginate(matched, f.Limit, f.Offset), total, nil
}

func (r *ProductRepository) DecrementStock(_ context.Context, id string, qty int) error {
	if !entity.ValidQuantity(qty) {
		return domain.Invalid("quantity", "debe estar entre 1 y el máximo por línea")
	}
	return r.s.do(r.tx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		if p.Stock < qty {
			return domain.ErrInsufficientStock
		}
		p.Stock -= qty
		return nil
	})
}

func (r *ProductRepository) ListLowStock(_ context.Context, threshold, limit int) ([]*entity.Product, error) {
	var out []*entity.Product
	_ = r.s.do(r.tx, func(st *state) error {
		for _, p := range st.products {
			if p.Stock <= threshold {
				out = append(out, cloneProduct(p))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stock != out[j].Stock {
			return out[i].Stock < out[j].Stock
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, limit, 0), nil
}

func (r *ProductRepository) Count(_ context.Context) (int, error) {
	n := 0
	err := r.s.do(r.tx, func(st *state) error {
		n = len(st.products)
		return nil
	})
	return n, err
}
