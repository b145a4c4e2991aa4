package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appanalytics "github.com/jhoicas/storefront-api/internal/application/analytics"
	"github.com/jhoicas/storefront-api/internal/application/auth"
	"github.com/jhoicas/storefront-api/internal/application/cart"
	"github.com/jhoicas/storefront-api/internal/application/checkout"
	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/usecase"
	"github.com/jhoicas/storefront-api/internal/infrastructure/memory"
	"github.com/jhoicas/storefront-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/storefront-api/internal/interfaces/http"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entorno: router completo sobre el driver en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	t      *testing.T
	app    *fiber.App
	authUC *auth.AuthUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
	}).WithBcryptCost(bcrypt.MinCost)
	cartUC := cart.NewUseCase(store.Carts(), store.Products())

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	app.Use(apphttp.RequestLogger(logger.Nop()))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   usecase.NewProductUseCase(store.Products()),
		CartUC:      cartUC,
		Checkout:    checkout.NewOrchestrator(memory.NewTxRunner(store), nil),
		OrderUC:     usecase.NewOrderUseCase(store.Orders(), store.Users(), cartUC, pdf.NewReceiptGenerator("Storefront", "USD")),
		DashboardUC: appanalytics.NewDashboardUseCase(store.Orders(), store.Products(), store.Users(), 5),
		JWTSecret:   testJWTSecret,
	})
	return &testEnv{t: t, app: app, authUC: authUC}
}

// do ejecuta la petición y devuelve status + cuerpo crudo.
func (e *testEnv) do(method, path, token string, body interface{}) (int, []byte) {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp.StatusCode, out
}

func (e *testEnv) decode(raw []byte, v interface{}) {
	e.t.Helper()
	require.NoError(e.t, json.Unmarshal(raw, v), string(raw))
}

func (e *testEnv) login(username, password string) string {
	e.t.Helper()
	status, raw := e.do(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: username, Password: password})
	require.Equal(e.t, http.StatusOK, status, string(raw))
	var out dto.LoginResponse
	e.decode(raw, &out)
	return out.Token
}

func (e *testEnv) customer(username string) string {
	e.t.Helper()
	status, raw := e.do(http.MethodPost, "/api/auth/signup", "", dto.SignupRequest{
		Username: username, Email: username + "@example.com", Password: "password123",
	})
	require.Equal(e.t, http.StatusCreated, status, string(raw))
	return e.login(username, "password123")
}

func (e *testEnv) admin() string {
	e.t.Helper()
	_, err := e.authUC.CreateAdmin(context.Background(), dto.SignupRequest{
		Username: "root", Email: "root@example.com", Password: "password123",
	})
	require.NoError(e.t, err)
	return e.login("root", "password123")
}

func (e *testEnv) product(adminToken, name, price string, stock int) dto.ProductResponse {
	e.t.Helper()
	status, raw := e.do(http.MethodPost, "/api/products", adminToken, dto.CreateProductRequest{
		Name: name, Price: decimal.RequireFromString(price), StockQuantity: stock, Category: "Cocina",
	})
	require.Equal(e.t, http.StatusCreated, status, string(raw))
	var p dto.ProductResponse
	e.decode(raw, &p)
	return p
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e), string(raw))
	return e.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestSignup_DuplicadoRetorna409(t *testing.T) {
	env := newTestEnv(t)
	env.customer("ana")

	status, raw := env.do(http.MethodPost, "/api/auth/signup", "", dto.SignupRequest{
		Username: "ANA", Email: "otra@example.com", Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "USERNAME_TAKEN", errorCode(t, raw))
}

func TestSignup_ValidacionRetorna400(t *testing.T) {
	env := newTestEnv(t)

	status, raw := env.do(http.MethodPost, "/api/auth/signup", "", dto.SignupRequest{
		Username: "ana", Email: "ana@example.com", Password: "corta",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))
}

func TestLogin_CredencialesInvalidas401(t *testing.T) {
	env := newTestEnv(t)
	env.customer("ana")

	status, raw := env.do(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "ana", Password: "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, raw))
}

func TestMeYRefresh(t *testing.T) {
	env := newTestEnv(t)
	tok := env.customer("ana")

	status, raw := env.do(http.MethodGet, "/api/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var me dto.UserResponse
	env.decode(raw, &me)
	assert.Equal(t, "ana", me.Username)
	assert.Equal(t, "customer", me.Role)

	status, raw = env.do(http.MethodPost, "/api/auth/refresh-token", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var refreshed dto.LoginResponse
	env.decode(raw, &refreshed)
	assert.NotEmpty(t, refreshed.Token)
	assert.Equal(t, me.ID, refreshed.User.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProductos_EscrituraSoloAdmin(t *testing.T) {
	env := newTestEnv(t)
	tok := env.customer("ana")

	status, raw := env.do(http.MethodPost, "/api/products", tok, dto.CreateProductRequest{Name: "Taza", Price: decimal.NewFromInt(10)})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, raw))

	status, _ = env.do(http.MethodPost, "/api/products", "", dto.CreateProductRequest{Name: "Taza", Price: decimal.NewFromInt(10)})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProductos_CRUDYListadoPublico(t *testing.T) {
	env := newTestEnv(t)
	adm := env.admin()
	taza := env.product(adm, "Taza", "10.00", 5)
	env.product(adm, "Cafetera", "120.00", 2)

	status, raw := env.do(http.MethodGet, "/api/products?sort=price-desc&limit=1", "", nil)
	require.Equal(t, http.StatusOK, status)
	var page dto.ProductListResponse
	env.decode(raw, &page)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Cafetera", page.Products[0].Name)

	status, raw = env.do(http.MethodGet, "/api/products?minPrice=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))

	newPrice := decimal.RequireFromString("12.50")
	status, raw = env.do(http.MethodPut, "/api/products/"+taza.ID, adm, dto.UpdateProductRequest{Price: &newPrice})
	require.Equal(t, http.StatusOK, status)
	var updated dto.ProductResponse
	env.decode(raw, &updated)
	assert.True(t, newPrice.Equal(updated.Price))
	assert.Equal(t, 5, updated.StockQuantity, "la actualización parcial no toca el stock")

	status, _ = env.do(http.MethodDelete, "/api/products/"+taza.ID, adm, nil)
	assert.Equal(t, http.StatusOK, status)

	status, raw = env.do(http.MethodGet, "/api/products/"+taza.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errorCode(t, raw))

	status, _ = env.do(http.MethodDelete, "/api/products/"+taza.ID, adm, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Carrito + checkout + órdenes
// ──────────────────────────────────────────────────────────────────────────────

func TestFlujoCompleto_CheckoutOrdenesYDashboard(t *testing.T) {
	env := newTestEnv(t)
	adm := env.admin()
	taza := env.product(adm, "Taza", "10.00", 5)
	tok := env.customer("ana")

	status, raw := env.do(http.MethodPost, "/api/cart", tok, dto.CartItemRequest{ProductID: taza.ID, Quantity: 1})
	require.Equal(t, http.StatusOK, status, string(raw))
	status, raw = env.do(http.MethodPost, "/api/cart/add", tok, dto.CartItemRequest{ProductID: taza.ID, Quantity: 1})
	require.Equal(t, http.StatusOK, status, string(raw))
	var c dto.CartResponse
	env.decode(raw, &c)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity, "agregar dos veces acumula")

	status, raw = env.do(http.MethodPost, "/api/cart/checkout", tok, nil)
	require.Equal(t, http.StatusCreated, status, string(raw))
	var order dto.OrderResponse
	env.decode(raw, &order)
	assert.True(t, decimal.RequireFromString("20.00").Equal(order.Total), order.Total.String())
	assert.Equal(t, "placed", order.Status)

	status, raw = env.do(http.MethodGet, "/api/products/"+taza.ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	var p dto.ProductResponse
	env.decode(raw, &p)
	assert.Equal(t, 3, p.StockQuantity)

	status, raw = env.do(http.MethodGet, "/api/cart", tok, nil)
	require.Equal(t, http.StatusOK, status)
	env.decode(raw, &c)
	assert.Empty(t, c.Items)

	status, raw = env.do(http.MethodGet, "/api/orders", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var list dto.OrderListResponse
	env.decode(raw, &list)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, order.ID, list.Orders[0].ID)

	status, _ = env.do(http.MethodGet, "/api/orders/"+order.ID, tok, nil)
	assert.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID+"/receipt", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	pdfBytes, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF")))

	status, raw = env.do(http.MethodPost, "/api/orders/"+order.ID+"/reorder", tok, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	env.decode(raw, &c)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)

	status, raw = env.do(http.MethodGet, "/api/dashboard/stats", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var stats map[string]interface{}
	env.decode(raw, &stats)
	assert.EqualValues(t, 1, stats["totalOrders"])
	assert.NotContains(t, stats, "totalRevenue", "un customer no recibe métricas de la tienda")

	status, raw = env.do(http.MethodGet, "/api/dashboard/stats", adm, nil)
	require.Equal(t, http.StatusOK, status)
	env.decode(raw, &stats)
	assert.EqualValues(t, 1, stats["totalStoreOrders"])
	assert.EqualValues(t, 1, stats["totalCustomers"])
}

func TestCheckout_CarritoVacio400(t *testing.T) {
	env := newTestEnv(t)
	tok := env.customer("ana")

	status, raw := env.do(http.MethodPost, "/api/cart/checkout", tok, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "EMPTY_CART", errorCode(t, raw))
}

func TestCheckout_StockInsuficiente409(t *testing.T) {
	env := newTestEnv(t)
	adm := env.admin()
	taza := env.product(adm, "Taza", "10.00", 1)
	tok := env.customer("ana")

	status, _ := env.do(http.MethodPost, "/api/cart", tok, dto.CartItemRequest{ProductID: taza.ID, Quantity: 3})
	require.Equal(t, http.StatusOK, status, "agregar no valida stock")

	status, raw := env.do(http.MethodPost, "/api/cart/checkout", tok, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, raw))

	status, raw = env.do(http.MethodGet, "/api/cart", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var c dto.CartResponse
	env.decode(raw, &c)
	assert.Len(t, c.Items, 1, "el carrito queda intacto")
}

func TestCarrito_SetQuantityYRemove(t *testing.T) {
	env := newTestEnv(t)
	adm := env.admin()
	taza := env.product(adm, "Taza", "10.00", 5)
	tok := env.customer("ana")

	status, raw := env.do(http.MethodPut, "/api/cart/"+taza.ID, tok, dto.CartItemRequest{Quantity: 4})
	assert.Equal(t, http.StatusNotFound, status, "fijar cantidad sin línea es 404")
	assert.Equal(t, "NOT_FOUND", errorCode(t, raw))

	env.do(http.MethodPost, "/api/cart", tok, dto.CartItemRequest{ProductID: taza.ID, Quantity: 1})

	status, raw = env.do(http.MethodPut, "/api/cart", tok, dto.CartItemRequest{ProductID: taza.ID, Quantity: 4})
	require.Equal(t, http.StatusOK, status, string(raw))
	var c dto.CartResponse
	env.decode(raw, &c)
	assert.Equal(t, 4, c.Items[0].Quantity)

	status, raw = env.do(http.MethodPut, "/api/cart/"+taza.ID, tok, dto.CartItemRequest{Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errorCode(t, raw))

	for i := 0; i < 2; i++ {
		status, raw = env.do(http.MethodDelete, "/api/cart/"+taza.ID, tok, nil)
		require.Equal(t, http.StatusOK, status, "quitar es idempotente")
	}
	env.decode(raw, &c)
	assert.Empty(t, c.Items)
}

func TestCarrito_ProductoInexistente404(t *testing.T) {
	env := newTestEnv(t)
	tok := env.customer("ana")

	status, raw := env.do(http.MethodPost, "/api/cart", tok, dto.CartItemRequest{ProductID: "no-existe", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errorCode(t, raw))
}

func TestOrdenes_AjenaEs404YListadosAdmin(t *testing.T) {
	env := newTestEnv(t)
	adm := env.admin()
	taza := env.product(adm, "Taza", "10.00", 5)
	ana := env.customer("ana")
	beto := env.customer("beto")

	env.do(http.MethodPost, "/api/cart", ana, dto.CartItemRequest{ProductID: taza.ID, Quantity: 1})
	status, raw := env.do(http.MethodPost, "/api/cart/checkout", ana, nil)
	require.Equal(t, http.StatusCreated, status)
	var order dto.OrderResponse
	env.decode(raw, &order)

	status, _ = env.do(http.MethodGet, "/api/orders/"+order.ID, beto, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(http.MethodGet, "/api/orders/"+order.ID, adm, nil)
	assert.Equal(t, http.StatusOK, status, "admin ve cualquier orden")

	status, _ = env.do(http.MethodGet, "/api/orders/all", beto, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, raw = env.do(http.MethodGet, "/api/orders/all", adm, nil)
	require.Equal(t, http.StatusOK, status)
	var list dto.OrderListResponse
	env.decode(raw, &list)
	assert.Equal(t, 1, list.Page.Total)

	status, raw = env.do(http.MethodGet, "/api/orders/user/"+order.UserID, adm, nil)
	require.Equal(t, http.StatusOK, status)
	env.decode(raw, &list)
	assert.Len(t, list.Orders, 1)
}

func TestRutaInexistente_RespondeJSON404(t *testing.T) {
	env := newTestEnv(t)

	status, raw := env.do(http.MethodGet, "/api/no-existe", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ROUTE_NOT_FOUND", errorCode(t, raw))
}
