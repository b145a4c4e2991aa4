package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storefront-api/internal/application/auth"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// LocalIdentity clave de Locals donde el gate deja la identidad autenticada.
const LocalIdentity = "identity"

type identityKey struct{}

// Gate expone autenticación y autorización como fiber.Handler encadenables por ruta.
type Gate struct {
	verifier *auth.Verifier
}

// NewGate construye el gate con el secret JWT.
func NewGate(jwtSecret string) *Gate {
	return &Gate{verifier: auth.NewVerifier(jwtSecret)}
}

// Authenticate valida el Bearer Token y adjunta la identidad a Locals y al user context.
func (g *Gate) Authenticate(c *fiber.Ctx) error {
	id, err := g.verifier.Authenticate(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	c.Locals(LocalIdentity, id)
	c.SetUserContext(context.WithValue(c.UserContext(), identityKey{}, id))
	return c.Next()
}

// RequireAdmin exige rol admin. Debe ir después de Authenticate.
func (g *Gate) RequireAdmin(c *fiber.Ctx) error {
	id, ok := GetIdentity(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	if err := auth.Authorize(id, adminOnly); err != nil {
		return err
	}
	return c.Next()
}

var adminOnly = auth.Roles(entity.RoleAdmin)

// GetIdentity devuelve la identidad del contexto (después de Authenticate).
func GetIdentity(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := c.Locals(LocalIdentity).(auth.Identity)
	return id, ok
}

// GetUserID devuelve el UserID del contexto o "" si no hay identidad.
func GetUserID(c *fiber.Ctx) string {
	id, _ := GetIdentity(c)
	return id.UserID
}

// IdentityFromContext recupera la identidad del context.Context de la petición.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

func requireIdentity(c *fiber.Ctx) (auth.Identity, error) {
	id, ok := GetIdentity(c)
	if !ok {
		return auth.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}
