package usecase

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
	maxStock        = math.MaxInt32
)

// maxPrice mayor valor que cabe en NUMERIC(12,2).
var maxPrice = decimal.RequireFromString("9999999999.99")

// ProductUseCase casos de uso del catálogo. El stock sólo baja vía checkout;
// el admin puede fijarlo explícitamente en Create/Update.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	now := time.Now().UTC()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Stock:       in.StockQuantity,
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return ToProductResponse(product), nil
}

// Update aplica una actualización parcial. El stock sólo se escribe si viene en la petición.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.StockQuantity != nil {
		product.Stock = *in.StockQuantity
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.ImageURL != nil {
		product.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	if in.StockQuantity != nil {
		if err := uc.repo.SetStock(ctx, id, *in.StockQuantity); err != nil {
			return nil, err
		}
	}
	// se relee para devolver el stock vigente, que pudo cambiar por un checkout
	current, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrProductNotFound
	}
	return ToProductResponse(current), nil
}

// Delete elimina un producto. Las líneas de carrito que lo referencian quedan
// marcadas como no disponibles y el checkout las rechaza.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// List lista el catálogo con filtros, orden y paginación por página.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductQuery) (*dto.ProductListResponse, error) {
	filter := repository.ProductFilter{
		Category: strings.TrimSpace(q.Category),
		Search:   strings.TrimSpace(q.Search),
		Sort:     q.Sort,
	}
	if filter.Sort == "" {
		filter.Sort = repository.SortNewest
	}
	if !repository.ValidSort(filter.Sort) {
		return nil, domain.Invalid("sort", "valores permitidos: newest, price-asc, price-desc, name-asc")
	}
	var err error
	if filter.MinPrice, err = parsePrice("minPrice", q.MinPrice); err != nil {
		return nil, err
	}
	if filter.MaxPrice, err = parsePrice("maxPrice", q.MaxPrice); err != nil {
		return nil, err
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, domain.Invalid("minPrice", "no puede ser mayor que maxPrice")
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	list, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductListResponse{
		Products:   make([]dto.ProductResponse, 0, len(list)),
		Total:      total,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
	}
	for _, p := range list {
		out.Products = append(out.Products, *ToProductResponse(p))
	}
	return out, nil
}

func parsePrice(field, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, domain.Invalid(field, "debe ser un número no negativo")
	}
	return &d, nil
}

func validateProduct(p *entity.Product) error {
	if p.Name == "" {
		return domain.Invalid("name", "es requerido")
	}
	if p.Price.IsNegative() {
		return domain.Invalid("price", "no puede ser negativo")
	}
	if !p.Price.Equal(p.Price.Round(2)) {
		return domain.Invalid("price", "admite como máximo 2 decimales")
	}
	if p.Price.GreaterThan(maxPrice) {
		return domain.Invalid("price", "no puede superar "+maxPrice.StringFixed(2))
	}
	if p.Stock < 0 {
		return domain.Invalid("stockQuantity", "no puede ser negativo")
	}
	if p.Stock > maxStock {
		return domain.Invalid("stockQuantity", "excede el máximo permitido")
	}
	return nil
}

// ToProductResponse convierte la entidad a DTO.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.Stock,
		Category:      p.Category,
		ImageURL:      p.ImageURL,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
