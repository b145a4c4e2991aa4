package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// mapError traduce un error de dominio a status HTTP + código.
func mapError(err error) (int, dto.ErrorResponse) {
	var stockErr *domain.InsufficientStockError
	var fe *fiber.Error

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"}
	case errors.Is(err, domain.ErrInvalidToken):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "INVALID_CREDENTIALS", Message: "credenciales inválidas"}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"}
	case errors.Is(err, domain.ErrProductNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrEmptyCart):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "EMPTY_CART", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.As(err, &stockErr), errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()}
	case errors.Is(err, domain.ErrUsernameTaken):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "USERNAME_TAKEN", Message: "el usuario ya está registrado"}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.As(err, &fe):
		return fe.Code, dto.ErrorResponse{Code: codeForStatus(fe.Code), Message: fe.Message}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"}
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "INVALID_BODY"
	case fiber.StatusNotFound:
		return "ROUTE_NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	default:
		if status >= fiber.StatusInternalServerError {
			return "INTERNAL"
		}
		return "HTTP_ERROR"
	}
}

// ErrorHandler convierte cualquier error devuelto por handlers o middlewares en dto.ErrorResponse.
// Los 5xx se registran con la causa; al cliente sólo llega el mensaje genérico.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		status, body := mapError(err)
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("error no controlado")
		}
		return c.Status(status).JSON(body)
	}
}

// badBody error para cuerpos que no se pueden parsear.
func badBody() error {
	return fiber.NewError(fiber.StatusBadRequest, "cuerpo inválido")
}
