package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/storefront-api/internal/application/analytics"
	"github.com/jhoicas/storefront-api/internal/application/auth"
	"github.com/jhoicas/storefront-api/internal/application/cart"
	"github.com/jhoicas/storefront-api/internal/application/checkout"
	"github.com/jhoicas/storefront-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *usecase.ProductUseCase
	CartUC      *cart.UseCase
	Checkout    *checkout.Orchestrator
	OrderUC     *usecase.OrderUseCase
	DashboardUC *appanalytics.DashboardUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	gate := NewGate(deps.JWTSecret)
	api := app.Group("/api")

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", gate.Authenticate, authHandler.Me)
	authGroup.Post("/refresh-token", gate.Authenticate, authHandler.Refresh)

	// Products: lectura pública, escritura admin
	productHandler := NewProductHandler(deps.ProductUC)
	products := api.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", gate.Authenticate, gate.RequireAdmin, productHandler.Create)
	products.Put("/:id", gate.Authenticate, gate.RequireAdmin, productHandler.Update)
	products.Delete("/:id", gate.Authenticate, gate.RequireAdmin, productHandler.Delete)

	// Cart
	cartHandler := NewCartHandler(deps.CartUC, deps.Checkout)
	cartGroup := api.Group("/cart", gate.Authenticate)
	cartGroup.Get("/", cartHandler.Get)
	cartGroup.Post("/", cartHandler.AddItem)
	cartGroup.Post("/add", cartHandler.AddItem)
	cartGroup.Post("/checkout", cartHandler.Checkout)
	cartGroup.Put("/", cartHandler.SetQuantity)
	cartGroup.Put("/:productId", cartHandler.SetQuantity)
	cartGroup.Delete("/:productId", cartHandler.RemoveItem)

	// Orders: /all y /user/:userId antes de /:id
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders := api.Group("/orders", gate.Authenticate)
	orders.Get("/", orderHandler.ListMine)
	orders.Get("/all", gate.RequireAdmin, orderHandler.ListAll)
	orders.Get("/user/:userId", gate.RequireAdmin, orderHandler.ListByUser)
	orders.Get("/:id", orderHandler.Get)
	orders.Get("/:id/receipt", orderHandler.Receipt)
	orders.Post("/:id/reorder", orderHandler.Reorder)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	api.Get("/dashboard/stats", gate.Authenticate, dashboardHandler.GetStats)
}
