// seed crea el usuario administrador y, si el catálogo está vacío, un catálogo de demostración.
//
// Uso: go run ./cmd/seed --admin-user admin --admin-password secreto123 [--admin-email admin@tienda.com] [--skip-catalog]
// Usa el mismo STORE_DRIVER y conexión que la API (y aplica migraciones si DB_MIGRATE=true).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/jhoicas/storefront-api/internal/application/auth"
	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/usecase"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/internal/infrastructure/storage"
	"github.com/jhoicas/storefront-api/pkg/config"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

type options struct {
	AdminUser     string
	AdminPassword string
	AdminEmail    string
	SkipCatalog   bool
}

type report struct {
	AdminCreated    bool
	ProductsCreated int
}

func main() {
	var opts options
	pflag.StringVar(&opts.AdminUser, "admin-user", "admin", "username del administrador")
	pflag.StringVar(&opts.AdminPassword, "admin-password", "", "password del administrador (requerido)")
	pflag.StringVar(&opts.AdminEmail, "admin-email", "admin@storefront.local", "email del administrador")
	pflag.BoolVar(&opts.SkipCatalog, "skip-catalog", false, "no crear el catálogo de demostración")
	pflag.Parse()

	if opts.AdminPassword == "" {
		fmt.Fprintln(os.Stderr, "--admin-password es requerido")
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed")

	ctx := context.Background()
	repos, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("conexión al store")
	}
	defer repos.Close()

	authUC := auth.NewAuthUseCase(repos.Users, auth.JWTConfig{
		Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer,
	})
	rep, err := run(ctx, authUC, usecase.NewProductUseCase(repos.Products), repos.Products, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().
		Str("driver", repos.Driver).
		Bool("admin_created", rep.AdminCreated).
		Int("products_created", rep.ProductsCreated).
		Msg("seed completado")
}

// run es idempotente: un admin existente y un catálogo no vacío se dejan como están.
func run(ctx context.Context, authUC *auth.AuthUseCase, productUC *usecase.ProductUseCase, products repository.ProductRepository, opts options) (report, error) {
	var rep report

	_, err := authUC.CreateAdmin(ctx, dto.SignupRequest{
		Username: opts.AdminUser,
		Email:    opts.AdminEmail,
		FullName: "Administrador",
		Password: opts.AdminPassword,
	})
	switch {
	case err == nil:
		rep.AdminCreated = true
	case errors.Is(err, domain.ErrUsernameTaken):
	default:
		return rep, fmt.Errorf("crear admin: %w", err)
	}

	if opts.SkipCatalog {
		return rep, nil
	}
	n, err := products.Count(ctx)
	if err != nil {
		return rep, fmt.Errorf("contar productos: %w", err)
	}
	if n > 0 {
		return rep, nil
	}
	for _, p := range demoCatalog() {
		if _, err := productUC.Create(ctx, p); err != nil {
			return rep, fmt.Errorf("crear producto %q: %w", p.Name, err)
		}
		rep.ProductsCreated++
	}
	return rep, nil
}

func demoCatalog() []dto.CreateProductRequest {
	item := func(name, category, price string, stock int, desc string) dto.CreateProductRequest {
		return dto.CreateProductRequest{
			Name: name, Category: category, Price: decimal.RequireFromString(price),
			StockQuantity: stock, Description: desc,
		}
	}
	return []dto.CreateProductRequest{
		item("Auriculares inalámbricos", "Electrónica", "59.90", 25, "Bluetooth 5.3 con cancelación de ruido."),
		item("Teclado mecánico", "Electrónica", "89.00", 12, "Switches táctiles, retroiluminación blanca."),
		item("Mouse ergonómico", "Electrónica", "34.50", 40, "Sensor óptico de 4000 DPI."),
		item("Cafetera de émbolo", "Hogar", "24.99", 18, "Vidrio borosilicato, 1 litro."),
		item("Taza de cerámica", "Hogar", "9.50", 60, "350 ml, apta para microondas."),
		item("Lámpara de escritorio", "Hogar", "42.00", 4, "LED regulable con brazo articulado."),
		item("Mochila urbana", "Accesorios", "49.90", 15, "Compartimento acolchado para portátil de 15\"."),
		item("Botella térmica", "Accesorios", "19.90", 3, "Acero inoxidable, 750 ml."),
	}
}
