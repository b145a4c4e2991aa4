package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository productos sobre la colección products.
type ProductRepository struct {
	coll *mongo.Collection
	sess context.Context // no nil dentro de TxRunner
}

// NewProductRepository construye el adaptador.
func NewProductRepository(coll *mongo.Collection) *ProductRepository {
	return &ProductRepository{coll: coll}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	if _, err := r.coll.InsertOne(sessionCtx(r.sess, ctx), newProductDoc(p)); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var doc productDoc
	if err := r.coll.FindOne(sessionCtx(r.sess, ctx), bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.entity(), nil
}

// GetMany dentro de una transacción lee del snapshot de la sesión; la escritura
// condicional de DecrementStock detecta cualquier cambio concurrente.
func (r *ProductRepository) GetMany(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := r.find(sessionCtx(r.sess, ctx), bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

// Update hace $set de los campos editables; stock y created_at quedan como están.
func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	set := bson.M{
		"name":        p.Name,
		"description": p.Description,
		"price":       toDecimal128(p.Price),
		"category":    p.Category,
		"image_url":   p.ImageURL,
		"updated_at":  p.UpdatedAt,
	}
	res, err := r.coll.UpdateOne(sessionCtx(r.sess, ctx), bson.M{"_id": p.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) SetStock(ctx context.Context, id string, stock int) error {
	res, err := r.coll.UpdateOne(sessionCtx(r.sess, ctx),
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"stock": stock, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(sessionCtx(r.sess, ctx), bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// productFilter traduce ProductFilter a un filtro bson.
func productFilter(f repository.ProductFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.Category) + "$", "$options": "i"}
	}
	if f.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		filter["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"description": pattern}}
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = toDecimal128(*f.MinPrice)
	}
	if f.MaxPrice != nil {
		price["$lte"] = toDecimal128(*f.MaxPrice)
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	return filter
}

func productSort(sort string) bson.D {
	switch sort {
	case repository.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case repository.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	case repository.SortNameAsc:
		return bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	}
}

func (r *ProductRepository) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	ctx = sessionCtx(r.sess, ctx)
	filter := productFilter(f)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	opts := options.Find().SetSort(productSort(f.Sort))
	if f.Sort == repository.SortNameAsc {
		// strength 2: orden alfabético sin distinguir mayúsculas
		opts.SetCollation(&options.Collation{Locale: "en", Strength: 2})
	}
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	list, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return list, int(total), nil
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*entity.Product, error) {
	if opts == nil {
		opts = options.Find()
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]*entity.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entity())
	}
	return out, nil
}

// DecrementStock usa un filtro condicional stock >= qty: el $inc sólo aplica si alcanza.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	if !entity.ValidQuantity(qty) {
		return domain.Invalid("quantity", "debe estar entre 1 y el máximo por línea")
	}
	res, err := r.coll.UpdateOne(sessionCtx(r.sess, ctx),
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *ProductRepository) ListLowStock(ctx context.Context, threshold, limit int) ([]*entity.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "stock", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	return r.find(sessionCtx(r.sess, ctx), bson.M{"stock": bson.M{"$lte": threshold}}, opts)
}

func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(sessionCtx(r.sess, ctx), bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return int(n), nil
}
