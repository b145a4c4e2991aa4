// Package cart implementa el agregado Cart: operaciones siempre acotadas
// al carrito de la identidad autenticada.
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

// UseCase operaciones sobre el carrito del usuario.
type UseCase struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(carts repository.CartRepository, products repository.ProductRepository) *UseCase {
	return &UseCase{carts: carts, products: products}
}

var errQuantityLimit = domain.Invalid("quantity", fmt.Sprintf("la línea no puede superar %d unidades", entity.MaxItemQuantity))

func validQuantity(qty int) error {
	if qty < 1 {
		return domain.Invalid("quantity", "debe ser mayor o igual a 1")
	}
	if qty > entity.MaxItemQuantity {
		return errQuantityLimit
	}
	return nil
}

// load devuelve el carrito o uno vacío si el usuario nunca tuvo carrito.
func (uc *UseCase) load(ctx context.Context, userID string) (*entity.Cart, bool, error) {
	c, err := uc.carts.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if c == nil {
		return entity.NewCart(userID), false, nil
	}
	return c, true, nil
}

// AddItem agrega qty unidades de productID. No valida stock: eso ocurre en checkout.
func (uc *UseCase) AddItem(ctx context.Context, userID, productID string, qty int) (*dto.CartResponse, error) {
	if productID == "" {
		return nil, domain.Invalid("productId", "es requerido")
	}
	if err := validQuantity(qty); err != nil {
		return nil, err
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	c, _, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !c.Add(productID, qty) {
		return nil, errQuantityLimit
	}
	if err := uc.save(ctx, c); err != nil {
		return nil, err
	}
	return uc.view(ctx, c)
}

// AddItems agrega varias líneas en una sola escritura (reorder). Omite los
// productos que ya no están en el catálogo.
func (uc *UseCase) AddItems(ctx context.Context, userID string, items []entity.CartItem) (*dto.CartResponse, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	existing, err := uc.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	c, _, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if _, ok := existing[it.ProductID]; !ok || it.Quantity < 1 {
			continue
		}
		if !c.Add(it.ProductID, it.Quantity) {
			return nil, errQuantityLimit
		}
	}
	if err := uc.save(ctx, c); err != nil {
		return nil, err
	}
	return uc.view(ctx, c)
}

// SetItemQuantity reemplaza la cantidad de una línea existente.
// Devuelve domain.ErrNotFound si el carrito o la línea no existen. No limita al stock.
func (uc *UseCase) SetItemQuantity(ctx context.Context, userID, productID string, qty int) (*dto.CartResponse, error) {
	if productID == "" {
		return nil, domain.Invalid("productId", "es requerido")
	}
	if err := validQuantity(qty); err != nil {
		return nil, err
	}
	c, exists, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists || !c.Set(productID, qty) {
		return nil, domain.ErrNotFound
	}
	if err := uc.save(ctx, c); err != nil {
		return nil, err
	}
	return uc.view(ctx, c)
}

// RemoveItem es idempotente: quitar una línea inexistente devuelve el carrito sin cambios.
func (uc *UseCase) RemoveItem(ctx context.Context, userID, productID string) (*dto.CartResponse, error) {
	c, exists, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists || c.Quantity(productID) == 0 {
		return uc.view(ctx, c)
	}
	c.Remove(productID)
	if err := uc.save(ctx, c); err != nil {
		return nil, err
	}
	return uc.view(ctx, c)
}

// GetCart nunca devuelve NotFound: un carrito nunca usado es un carrito vacío.
func (uc *UseCase) GetCart(ctx context.Context, userID string) (*dto.CartResponse, error) {
	c, _, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, c)
}

func (uc *UseCase) save(ctx context.Context, c *entity.Cart) error {
	c.UpdatedAt = time.Now().UTC()
	return uc.carts.Save(ctx, c)
}

// view enriquece las líneas con nombre, precio y stock actuales del catálogo.
func (uc *UseCase) view(ctx context.Context, c *entity.Cart) (*dto.CartResponse, error) {
	out := &dto.CartResponse{
		UserID: c.UserID,
		Items:  make([]dto.CartItemResponse, 0, len(c.Items)),
		Total:  decimal.Zero,
	}
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		out.UpdatedAt = &t
	}
	if len(c.Items) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := uc.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range c.Items {
		line := dto.CartItemResponse{ProductID: it.ProductID, Quantity: it.Quantity, Price: decimal.Zero, Subtotal: decimal.Zero}
		if p, ok := products[it.ProductID]; ok {
			line.Name = p.Name
			line.ImageURL = p.ImageURL
			line.Price = p.Price
			line.StockQuantity = p.Stock
			line.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			line.Available = true
			out.Total = out.Total.Add(line.Subtotal)
		}
		out.ItemCount += it.Quantity
		out.Items = append(out.Items, line)
	}
	return out, nil
}
