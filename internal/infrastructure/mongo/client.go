// Package mongo implementa los repositorios sobre MongoDB (STORE_DRIVER=mongo).
// El checkout usa transacciones multi-documento: el servidor debe ser un replica set.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/storefront-api/pkg/config"
)

// Nombres de colecciones.
const (
	UsersCollection    = "users"
	ProductsCollection = "products"
	CartsCollection    = "carts"
	OrdersCollection   = "orders"
)

// Connect abre el cliente y verifica la conexión con un ping.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes crea los índices que sostienen las invariantes (username único) y las consultas frecuentes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("index users.username: %w", err)
	}
	_, err = db.Collection(ProductsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("index products: %w", err)
	}
	_, err = db.Collection(OrdersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("index orders: %w", err)
	}
	return nil
}

// Store agrupa los repositorios de una base.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore construye el store sobre la base indicada.
func NewStore(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

// Database devuelve la base subyacente.
func (s *Store) Database() *mongo.Database { return s.db }

func (s *Store) Users() *UserRepository {
	return NewUserRepository(s.db.Collection(UsersCollection))
}

func (s *Store) Products() *ProductRepository {
	return NewProductRepository(s.db.Collection(ProductsCollection))
}

func (s *Store) Carts() *CartRepository {
	return NewCartRepository(s.db.Collection(CartsCollection))
}

func (s *Store) Orders() *OrderRepository {
	return NewOrderRepository(s.db.Collection(OrdersCollection))
}

// sessionCtx devuelve el contexto de sesión si el repositorio corre dentro de una transacción.
func sessionCtx(sess, ctx context.Context) context.Context {
	if sess != nil {
		return sess
	}
	return ctx
}
