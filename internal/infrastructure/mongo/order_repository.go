package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepository)(nil)

// OrderRepository órdenes con sus líneas embebidas.
type OrderRepository struct {
	coll *mongo.Collection
	sess context.Context
}

// NewOrderRepository construye el adaptador.
func NewOrderRepository(coll *mongo.Collection) *OrderRepository {
	return &OrderRepository{coll: coll}
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	if _, err := r.coll.InsertOne(sessionCtx(r.sess, ctx), newOrderDoc(o)); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var doc orderDoc
	if err := r.coll.FindOne(sessionCtx(r.sess, ctx), bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return doc.entity(), nil
}

func orderFilter(userID string) bson.M {
	if userID == "" {
		return bson.M{}
	}
	return bson.M{"user_id": userID}
}

func (r *OrderRepository) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	ctx = sessionCtx(r.sess, ctx)
	filter := orderFilter(f.UserID)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}
	out := make([]*entity.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entity())
	}
	return out, int(total), nil
}

// Totals agrega en el servidor: $sum sobre Decimal128 conserva la precisión.
func (r *OrderRepository) Totals(ctx context.Context, userID string) (repository.OrderTotals, error) {
	ctx = sessionCtx(r.sess, ctx)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: orderFilter(userID)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$total"}}},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return repository.OrderTotals{}, fmt.Errorf("aggregate orders: %w", err)
	}
	var rows []struct {
		Count   int                  `bson:"count"`
		Revenue primitive.Decimal128 `bson:"revenue"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return repository.OrderTotals{}, fmt.Errorf("decode totals: %w", err)
	}
	if len(rows) == 0 {
		return repository.OrderTotals{Revenue: decimal.Zero}, nil
	}
	return repository.OrderTotals{Count: rows[0].Count, Revenue: fromDecimal128(rows[0].Revenue)}, nil
}
