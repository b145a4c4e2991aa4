package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storefront-api/internal/application/cart"
	"github.com/jhoicas/storefront-api/internal/application/checkout"
	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/usecase"
	"github.com/jhoicas/storefront-api/internal/domain"
)

// CartHandler maneja el carrito del usuario autenticado y el checkout.
type CartHandler struct {
	cart     *cart.UseCase
	checkout *checkout.Orchestrator
}

// NewCartHandler construye el handler.
func NewCartHandler(cartUC *cart.UseCase, orchestrator *checkout.Orchestrator) *CartHandler {
	return &CartHandler{cart: cartUC, checkout: orchestrator}
}

// Get godoc
// @Summary      Ver carrito
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/cart [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	out, err := h.cart.GetCart(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// AddItem godoc
// @Summary      Agregar producto al carrito
// @Description  Si la línea existe, suma la cantidad. No valida stock.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CartItemRequest  true  "productId, quantity"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cart [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var in dto.CartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	if in.ProductID == "" {
		return domain.Invalid("productId", "es requerido")
	}
	out, err := h.cart.AddItem(c.UserContext(), id.UserID, in.ProductID, in.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// SetQuantity godoc
// @Summary      Fijar cantidad de una línea
// @Description  El productId puede venir en la ruta o en el cuerpo.
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string               false  "ID del producto"
// @Param        body       body  dto.CartItemRequest  true   "quantity (y productId si no va en la ruta)"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cart/{productId} [put]
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var in dto.CartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody()
	}
	if p := c.Params("productId"); p != "" {
		in.ProductID = p
	}
	if in.ProductID == "" {
		return domain.Invalid("productId", "es requerido")
	}
	out, err := h.cart.SetItemQuantity(c.UserContext(), id.UserID, in.ProductID, in.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// RemoveItem godoc
// @Summary      Quitar producto del carrito
// @Description  Idempotente: quitar una línea inexistente no es error.
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.CartResponse
// @Router       /api/cart/{productId} [delete]
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	out, err := h.cart.RemoveItem(c.UserContext(), id.UserID, c.Params("productId"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Checkout godoc
// @Summary      Confirmar compra
// @Description  Descuenta stock, crea la orden y vacía el carrito en una sola transacción.
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cart/checkout [post]
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	order, err := h.checkout.Checkout(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(usecase.ToOrderResponse(order))
}
