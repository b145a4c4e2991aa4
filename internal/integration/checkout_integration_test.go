//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/storefront-api/internal/application/checkout"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/infrastructure/events"
	"github.com/jhoicas/storefront-api/internal/infrastructure/postgres"
	"github.com/jhoicas/storefront-api/pkg/config"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

const orderQueue = "order.created.test"

func TestCheckoutIntegration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pgC, dsn := startPostgres(ctx, t)
	defer terminateContainer(t, pgC)

	rabbitC, rabbitURL := startRabbitMQ(ctx, t)
	defer terminateContainer(t, rabbitC)

	require.NoError(t, postgres.RunMigrations(dsn, logger.Nop()))
	// Segunda corrida: sin cambios pendientes no es error.
	require.NoError(t, postgres.RunMigrations(dsn, logger.Nop()))

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	products := postgres.NewProductRepository(pool)
	carts := postgres.NewCartRepository(pool)
	orders := postgres.NewOrderRepository(pool)

	conn, err := amqp.Dial(rabbitURL)
	require.NoError(t, err)
	defer conn.Close()
	publisher, err := events.NewOrderPublisher(conn, orderQueue)
	require.NoError(t, err)
	defer publisher.Close()

	orchestrator := checkout.NewOrchestrator(postgres.NewTxRunner(pool), logger.Nop(), publisher)

	now := time.Now().UTC()
	require.NoError(t, products.Create(ctx, &entity.Product{
		ID: "p1", Name: "Taza", Price: decimal.RequireFromString("10.00"), Stock: 7, CreatedAt: now, UpdatedAt: now,
	}))

	// ── Checkout concurrente: 20 compradores de 2 unidades contra stock 7 ────────
	const buyers = 20
	for i := 0; i < buyers; i++ {
		uid := fmt.Sprintf("u%02d", i)
		require.NoError(t, users.Create(ctx, &entity.User{
			ID: uid, Username: uid, Email: uid + "@example.com", PasswordHash: "x", Role: entity.RoleCustomer,
			CreatedAt: now, UpdatedAt: now,
		}))
		c := entity.NewCart(uid)
		c.Add("p1", 2)
		require.NoError(t, carts.Save(ctx, c))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		unexpect  []error
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := orchestrator.Checkout(ctx, uid)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrInsufficientStock):
			default:
				unexpect = append(unexpect, err)
			}
		}(fmt.Sprintf("u%02d", i))
	}
	wg.Wait()

	require.Empty(t, unexpect)
	assert.Equal(t, 3, successes, "7 unidades alcanzan para 3 compras de 2")

	p, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock)

	totals, err := orders.Totals(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, successes, totals.Count)
	assert.True(t, decimal.RequireFromString("60.00").Equal(totals.Revenue), totals.Revenue.String())

	// ── Evento OrderCreated publicado por cada orden ─────────────────────────────
	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()
	deliveries, err := ch.Consume(orderQueue, "", true, false, false, false, nil)
	require.NoError(t, err)

	received := 0
	timeout := time.After(15 * time.Second)
	for received < successes {
		select {
		case d := <-deliveries:
			var ev events.OrderCreated
			require.NoError(t, json.Unmarshal(d.Body, &ev))
			assert.Equal(t, events.EventTypeOrderCreated, ev.EventType)
			assert.Equal(t, "20.00", ev.Total)
			received++
		case <-timeout:
			t.Fatalf("se recibieron %d de %d eventos", received, successes)
		}
	}
}

func startPostgres(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "storefront"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/storefront?sslmode=disable", host, mappedPort.Port())
	return container, dsn
}

func startRabbitMQ(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3.13-alpine",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)

	return container, fmt.Sprintf("amqp://guest:guest@%s:%s/", host, mappedPort.Port())
}

func terminateContainer(t *testing.T, c testcontainers.Container) {
	t.Helper()
	terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, c.Terminate(terminateCtx))
}
