package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-api/internal/application/checkout"
	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/usecase"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/internal/infrastructure/memory"
)

func createProduct(t *testing.T, uc *usecase.ProductUseCase, name, price, category string, stock int) *dto.ProductResponse {
	t.Helper()
	p, err := uc.Create(context.Background(), dto.CreateProductRequest{
		Name: name, Price: decimal.RequireFromString(price), StockQuantity: stock, Category: category,
	})
	require.NoError(t, err)
	return p
}

func TestProductUseCase_CRUD(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore().Products())
	ctx := context.Background()

	p := createProduct(t, uc, "Taza", "10.00", "hogar", 5)

	got, err := uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Taza", got.Name)

	newPrice := decimal.RequireFromString("12.50")
	updated, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.True(t, newPrice.Equal(updated.Price))
	assert.Equal(t, "Taza", updated.Name, "los campos nil no cambian")

	require.NoError(t, uc.Delete(ctx, p.ID))
	_, err = uc.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, p.ID), domain.ErrProductNotFound)
}

func TestProductUseCase_Validaciones(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore().Products())
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{Name: " ", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "X", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "X", Price: decimal.NewFromInt(1), StockQuantity: -3})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	neg := -1
	p := createProduct(t, uc, "Taza", "1", "", 1)
	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{StockQuantity: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUseCase_ListFiltrosYPaginas(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore().Products())
	ctx := context.Background()

	createProduct(t, uc, "Taza azul", "10.00", "Hogar", 5)
	createProduct(t, uc, "Taza roja", "8.00", "hogar", 5)
	createProduct(t, uc, "Libreta", "3.00", "papelería", 5)

	res, err := uc.List(ctx, dto.ProductQuery{Category: "HOGAR", Sort: "price-asc"})
	require.NoError(t, err)
	require.Equal(t, 2, res.Total)
	assert.Equal(t, "Taza roja", res.Products[0].Name)

	res, err = uc.List(ctx, dto.ProductQuery{Search: "taza", MinPrice: "9"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Taza azul", res.Products[0].Name)

	res, err = uc.List(ctx, dto.ProductQuery{Sort: "name-asc", Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.TotalPages)
	assert.Equal(t, 2, res.Page)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Taza roja", res.Products[0].Name)
}

func TestProductUseCase_ListParametrosInvalidos(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore().Products())
	ctx := context.Background()

	_, err := uc.List(ctx, dto.ProductQuery{Sort: "popular"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.List(ctx, dto.ProductQuery{MinPrice: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.List(ctx, dto.ProductQuery{MinPrice: "10", MaxPrice: "5"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUseCase_PrecioConMasDeDosDecimalesOFueraDeRango(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore().Products())
	ctx := context.Background()

	for _, price := range []string{"10.005", "10000000000", "0.001"} {
		_, err := uc.Create(ctx, dto.CreateProductRequest{Name: "X", Price: decimal.RequireFromString(price)})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, price)
	}
	for _, price := range []string{"10.5", "10.500", "9999999999.99"} {
		_, err := uc.Create(ctx, dto.CreateProductRequest{Name: "X", Price: decimal.RequireFromString(price)})
		assert.NoError(t, err, price)
	}

	p := createProduct(t, uc, "Taza", "10.00", "", 1)
	bad := decimal.RequireFromString("1.999")
	_, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Price: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// interleavedProducts ejecuta fn justo después de la primera lectura por ID.
type interleavedProducts struct {
	repository.ProductRepository
	once sync.Once
	fn   func()
}

func (r *interleavedProducts) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := r.ProductRepository.GetByID(ctx, id)
	r.once.Do(r.fn)
	return p, err
}

func TestProductUseCase_UpdateNoPisaStockDeCheckoutConcurrente(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	p := createProduct(t, usecase.NewProductUseCase(store.Products()), "Taza", "10.00", "hogar", 5)

	c := entity.NewCart("u1")
	c.Add(p.ID, 5)
	require.NoError(t, store.Carts().Save(ctx, c))
	orch := checkout.NewOrchestrator(memory.NewTxRunner(store), nil)

	uc := usecase.NewProductUseCase(&interleavedProducts{
		ProductRepository: store.Products(),
		fn: func() {
			_, err := orch.Checkout(ctx, "u1")
			require.NoError(t, err)
		},
	})

	name := "Taza grande"
	out, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Taza grande", out.Name)
	assert.Equal(t, 0, out.StockQuantity, "la respuesta refleja el stock vigente")

	saved, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, saved.Stock, "las 5 unidades vendidas no vuelven")
	assert.Equal(t, "Taza grande", saved.Name)
}

func TestProductUseCase_UpdateFijaStockExplicito(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewProductUseCase(store.Products())
	ctx := context.Background()
	p := createProduct(t, uc, "Taza", "10.00", "", 5)

	nine := 9
	out, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{StockQuantity: &nine})
	require.NoError(t, err)
	assert.Equal(t, 9, out.StockQuantity)

	saved, _ := store.Products().GetByID(ctx, p.ID)
	assert.Equal(t, 9, saved.Stock)
}
