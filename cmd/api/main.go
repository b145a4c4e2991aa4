package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/swaggo/swag"

	_ "github.com/jhoicas/storefront-api/docs"
	appanalytics "github.com/jhoicas/storefront-api/internal/application/analytics"
	"github.com/jhoicas/storefront-api/internal/application/auth"
	"github.com/jhoicas/storefront-api/internal/application/cart"
	"github.com/jhoicas/storefront-api/internal/application/checkout"
	"github.com/jhoicas/storefront-api/internal/application/usecase"
	infraemail "github.com/jhoicas/storefront-api/internal/infrastructure/email"
	infraevents "github.com/jhoicas/storefront-api/internal/infrastructure/events"
	infrapdf "github.com/jhoicas/storefront-api/internal/infrastructure/pdf"
	"github.com/jhoicas/storefront-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/storefront-api/internal/interfaces/http"
	"github.com/jhoicas/storefront-api/pkg/config"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	repos, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("conexión al store")
	}
	defer repos.Close()

	// Hooks post-checkout opcionales: sin configuración no se registran.
	var hooks []checkout.OrderPlacedHook
	if cfg.Broker.RabbitURL != "" {
		conn, err := amqp.Dial(cfg.Broker.RabbitURL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a RabbitMQ")
		}
		defer conn.Close()
		publisher, err := infraevents.NewOrderPublisher(conn, cfg.Broker.Queue)
		if err != nil {
			log.Fatal().Err(err).Msg("publisher de órdenes")
		}
		defer publisher.Close()
		hooks = append(hooks, publisher)
		log.Info().Str("queue", cfg.Broker.Queue).Msg("publicación de eventos habilitada")
	}
	if cfg.Mail.SendGridKey != "" {
		hooks = append(hooks, infraemail.NewOrderMailer(
			cfg.Mail.SendGridKey, cfg.Mail.Sender, cfg.Mail.SenderName, cfg.Shop.Currency, repos.Users,
		))
		log.Info().Str("sender", cfg.Mail.Sender).Msg("correo de confirmación habilitado")
	}

	authUC := auth.NewAuthUseCase(repos.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	productUC := usecase.NewProductUseCase(repos.Products)
	cartUC := cart.NewUseCase(repos.Carts, repos.Products)
	orchestrator := checkout.NewOrchestrator(repos.Tx, log.Component("checkout"), hooks...)
	receipts := infrapdf.NewReceiptGenerator(cfg.App.Name, cfg.Shop.Currency)
	orderUC := usecase.NewOrderUseCase(repos.Orders, repos.Users, cartUC, receipts)
	dashboardUC := appanalytics.NewDashboardUseCase(repos.Orders, repos.Products, repos.Users, cfg.Shop.LowStockThreshold)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Storefront API",
	}))
	app.Get("/docs.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.SendString(doc)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": repos.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   productUC,
		CartUC:      cartUC,
		Checkout:    orchestrator,
		OrderUC:     orderUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
