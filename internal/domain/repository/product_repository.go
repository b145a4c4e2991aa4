package repository

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Ordenamientos soportados por el catálogo.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortNameAsc   = "name-asc"
)

// ValidSort indica si s es un ordenamiento soportado.
func ValidSort(s string) bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortNameAsc:
		return true
	}
	return false
}

// ProductFilter criterios de búsqueda del catálogo. Campos vacíos no filtran.
type ProductFilter struct {
	Category string
	Search   string // coincidencia parcial, sin distinguir mayúsculas, en nombre y descripción
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
	Limit    int
	Offset   int
}

// ProductRepository puerto de persistencia para Product (Product Store).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetMany carga los productos indicados. Dentro de la transacción de checkout
	// el driver además bloquea las filas hasta el commit.
	// Los IDs inexistentes simplemente no aparecen en el mapa.
	GetMany(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	// Update escribe los campos editables salvo el stock, que sólo cambian
	// SetStock y DecrementStock. Devuelve domain.ErrProductNotFound si no existe.
	Update(ctx context.Context, product *entity.Product) error
	// SetStock fija el stock (ajuste del admin). Devuelve domain.ErrProductNotFound si no existe.
	SetStock(ctx context.Context, id string, stock int) error
	// Delete devuelve domain.ErrProductNotFound si no existe.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	// DecrementStock descuenta qty sólo si stock >= qty; si no, devuelve domain.ErrInsufficientStock.
	DecrementStock(ctx context.Context, id string, qty int) error
	ListLowStock(ctx context.Context, threshold, limit int) ([]*entity.Product, error)
	Count(ctx context.Context) (int, error)
}
