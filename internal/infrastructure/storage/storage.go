// Package storage abre el backend de persistencia elegido por STORE_DRIVER y
// expone sus repositorios y el TxRunner del checkout.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/storefront-api/internal/application/checkout"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/internal/infrastructure/memory"
	"github.com/jhoicas/storefront-api/internal/infrastructure/mongo"
	"github.com/jhoicas/storefront-api/internal/infrastructure/postgres"
	"github.com/jhoicas/storefront-api/pkg/config"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// Repositories repositorios de un backend + cierre de conexiones.
type Repositories struct {
	Driver   string
	Users    repository.UserRepository
	Products repository.ProductRepository
	Carts    repository.CartRepository
	Orders   repository.OrderRepository
	Tx       checkout.TxRunner

	closeFn func()
}

// Close libera las conexiones del backend. Seguro de llamar más de una vez.
func (r *Repositories) Close() {
	if r.closeFn != nil {
		r.closeFn()
		r.closeFn = nil
	}
}

// Open conecta el backend configurado. Para postgres aplica migraciones si DB_MIGRATE=true;
// para mongo crea los índices.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Repositories, error) {
	if log == nil {
		log = logger.Nop()
	}
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return openMemory(), nil
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.DB, log)
	case config.DriverMongo:
		return openMongo(ctx, cfg.Mongo)
	default:
		return nil, fmt.Errorf("storage: driver desconocido %q", cfg.Store.Driver)
	}
}

func openMemory() *Repositories {
	store := memory.NewStore()
	return &Repositories{
		Driver:   config.DriverMemory,
		Users:    store.Users(),
		Products: store.Products(),
		Carts:    store.Carts(),
		Orders:   store.Orders(),
		Tx:       memory.NewTxRunner(store),
	}
}

func openPostgres(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Repositories, error) {
	if cfg.Migrate {
		if err := postgres.RunMigrations(cfg.ConnectionString(), log); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Driver:   config.DriverPostgres,
		Users:    postgres.NewUserRepository(pool),
		Products: postgres.NewProductRepository(pool),
		Carts:    postgres.NewCartRepository(pool),
		Orders:   postgres.NewOrderRepository(pool),
		Tx:       postgres.NewTxRunner(pool),
		closeFn:  pool.Close,
	}, nil
}

func openMongo(ctx context.Context, cfg config.MongoConfig) (*Repositories, error) {
	client, err := mongo.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := mongo.NewStore(client, cfg.Database)
	if err := mongo.EnsureIndexes(ctx, store.Database()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &Repositories{
		Driver:   config.DriverMongo,
		Users:    store.Users(),
		Products: store.Products(),
		Carts:    store.Carts(),
		Orders:   store.Orders(),
		Tx:       mongo.NewTxRunner(store),
		closeFn:  func() { _ = client.Disconnect(context.Background()) },
	}, nil
}
