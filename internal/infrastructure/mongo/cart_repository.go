package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.CartRepository = (*CartRepository)(nil)

// CartRepository un documento por usuario en la colección carts.
type CartRepository struct {
	coll *mongo.Collection
	sess context.Context
}

// NewCartRepository construye el adaptador.
func NewCartRepository(coll *mongo.Collection) *CartRepository {
	return &CartRepository{coll: coll}
}

func (r *CartRepository) Get(ctx context.Context, userID string) (*entity.Cart, error) {
	var doc cartDoc
	if err := r.coll.FindOne(sessionCtx(r.sess, ctx), bson.M{"_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}
	return doc.entity(), nil
}

// Save reemplaza el documento completo (upsert): un solo write, atómico por documento.
func (r *CartRepository) Save(ctx context.Context, c *entity.Cart) error {
	_, err := r.coll.ReplaceOne(sessionCtx(r.sess, ctx), bson.M{"_id": c.UserID}, newCartDoc(c),
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
