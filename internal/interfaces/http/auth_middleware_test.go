package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/storefront-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/storefront-api/pkg/jwt"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "storefront-test"
	testExpMin    = 60
)

// buildGateApp construye una aplicación Fiber mínima con:
//   - /protected: sólo Authenticate
//   - /admin: Authenticate + RequireAdmin
//
// Ambos devuelven 200 con la identidad si pasan los middlewares.
func buildGateApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	gate := apphttp.NewGate(testJWTSecret)

	echo := func(c *fiber.Ctx) error {
		id, ok := apphttp.GetIdentity(c)
		fromCtx, _ := apphttp.IdentityFromContext(c.UserContext())
		return c.JSON(fiber.Map{
			"ok":      ok,
			"user_id": id.UserID,
			"role":    id.Role,
			"ctx_uid": fromCtx.UserID,
		})
	}
	app.Get("/protected", gate.Authenticate, echo)
	app.Get("/admin", gate.Authenticate, gate.RequireAdmin, echo)
	return app
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func doGet(t *testing.T, app *fiber.App, path, authHeader string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, string(body)
}

// ──────────────────────────────────────────────────────────────────────────────
// Authenticate
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthenticate_SinAuthHeader_Retorna401(t *testing.T) {
	resp, body := doGet(t, buildGateApp(), "/protected", "")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "MISSING_TOKEN")
}

func TestAuthenticate_BearerSinToken_Retorna401(t *testing.T) {
	resp, body := doGet(t, buildGateApp(), "/protected", "Bearer ")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "MISSING_TOKEN")
}

func TestAuthenticate_EsquemaIncorrecto_Retorna401(t *testing.T) {
	resp, body := doGet(t, buildGateApp(), "/protected", "Basic dXNlcjpwYXNz")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "INVALID_TOKEN")
}

func TestAuthenticate_TokenInvalido_Retorna401(t *testing.T) {
	resp, body := doGet(t, buildGateApp(), "/protected", "Bearer token.invalido.aqui")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "INVALID_TOKEN")
}

func TestAuthenticate_TokenExpirado_Retorna401(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "customer", testIssuer, -1)
	require.NoError(t, err)

	resp, body := doGet(t, buildGateApp(), "/protected", "Bearer "+tok)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "INVALID_TOKEN")
}

func TestAuthenticate_RolDesconocido_Retorna401(t *testing.T) {
	resp, _ := doGet(t, buildGateApp(), "/protected", tokenForRole(t, "bodeguero"))

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticate_AdjuntaIdentidad(t *testing.T) {
	resp, body := doGet(t, buildGateApp(), "/protected", tokenForRole(t, "customer"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, testUserID, out["user_id"])
	assert.Equal(t, "customer", out["role"])
	assert.Equal(t, testUserID, out["ctx_uid"], "la identidad también viaja en el user context")
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireAdmin
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireAdmin_AdminAccede(t *testing.T) {
	resp, body := doGet(t, buildGateApp(), "/admin", tokenForRole(t, "admin"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"role":"admin"`)
}

func TestRequireAdmin_CustomerBloqueado(t *testing.T) {
	resp, body := doGet(t, buildGateApp(), "/admin", tokenForRole(t, "customer"))

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "FORBIDDEN")
}

func TestRequireAdmin_SinAuthenticatePrevio_Retorna401(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	app.Get("/solo-admin", apphttp.NewGate(testJWTSecret).RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, _ := doGet(t, app, "/solo-admin", tokenForRole(t, "admin"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
