package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/pkg/jwt"
)

// Identity identidad autenticada adjunta a la petición.
type Identity struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
}

// IsAdmin indica si la identidad tiene rol admin.
func (i Identity) IsAdmin() bool { return i.Role == entity.RoleAdmin }

// RoleSet conjunto de roles permitidos en una ruta. Vacío = cualquier identidad autenticada.
type RoleSet map[string]struct{}

// Roles construye un RoleSet.
func Roles(roles ...string) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Verifier valida bearer tokens. Stateless: la verificación es función pura del token.
type Verifier struct {
	secret string
}

// NewVerifier construye el verificador con el secret HS256.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Authenticate extrae y verifica el bearer token del header Authorization.
//   - header ausente o sin token → domain.ErrUnauthenticated
//   - esquema distinto de Bearer, firma inválida, expirado o rol desconocido → domain.ErrInvalidToken
func (v *Verifier) Authenticate(authorizationHeader string) (Identity, error) {
	header := strings.TrimSpace(authorizationHeader)
	if header == "" {
		return Identity{}, domain.ErrUnauthenticated
	}
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return Identity{}, domain.ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, domain.ErrUnauthenticated
	}
	parsed, err := jwt.Parse(v.secret, token)
	if err != nil {
		return Identity{}, domain.ErrInvalidToken
	}
	if !entity.ValidRole(parsed.Role) {
		return Identity{}, domain.ErrInvalidToken
	}
	return Identity{UserID: parsed.UserID, Role: parsed.Role, ExpiresAt: parsed.ExpiresAt}, nil
}

// Authorize devuelve domain.ErrForbidden si el rol no está en allowed. Sin efectos secundarios.
func Authorize(id Identity, allowed RoleSet) error {
	if len(allowed) == 0 {
		return nil
	}
	if _, ok := allowed[id.Role]; !ok {
		return domain.ErrForbidden
	}
	return nil
}

// IsAuthError indica si err proviene del gate (para mapear a 401).
func IsAuthError(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrInvalidToken)
}
