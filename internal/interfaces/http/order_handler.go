package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storefront-api/internal/application/usecase"
)

// OrderHandler consultas de órdenes, reorder y comprobante PDF.
type OrderHandler struct {
	uc *usecase.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// ListMine godoc
// @Summary      Mis órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	return h.list(c, id.UserID)
}

// ListAll godoc
// @Summary      Todas las órdenes (admin)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/orders/all [get]
func (h *OrderHandler) ListAll(c *fiber.Ctx) error {
	return h.list(c, "")
}

// ListByUser godoc
// @Summary      Órdenes de un usuario (admin)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        userId  path   string  true   "ID del usuario"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/orders/user/{userId} [get]
func (h *OrderHandler) ListByUser(c *fiber.Ctx) error {
	return h.list(c, c.Params("userId"))
}

func (h *OrderHandler) list(c *fiber.Ctx, userID string) error {
	out, err := h.uc.List(c.UserContext(), userID, c.QueryInt("limit", 20), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Get(c.UserContext(), id, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Reorder godoc
// @Summary      Volver a pedir
// @Description  Agrega al carrito las líneas de la orden; omite productos ya eliminados.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.CartResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/reorder [post]
func (h *OrderHandler) Reorder(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Reorder(c.UserContext(), id, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receipt [get]
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	orderID := c.Params("id")
	pdf, err := h.uc.Receipt(c.UserContext(), id, orderID)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="orden-%s.pdf"`, orderID))
	return c.Send(pdf)
}
