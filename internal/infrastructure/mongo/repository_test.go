package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

func TestDecimal128_IdaYVuelta(t *testing.T) {
	for _, s := range []string{"0", "10.00", "1234567.89", "0.01"} {
		d := decimal.RequireFromString(s)
		assert.True(t, d.Equal(fromDecimal128(toDecimal128(d))), s)
	}
}

func TestOrderDoc_ConservaLineas(t *testing.T) {
	o := &entity.Order{
		ID: "o1", UserID: "u1", Total: decimal.RequireFromString("20.00"), Status: entity.OrderStatusPlaced,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Items:     []entity.OrderItem{{ProductID: "p1", Name: "Taza", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2, Subtotal: decimal.RequireFromString("20.00")}},
	}
	back := newOrderDoc(o).entity()
	require.Len(t, back.Items, 1)
	assert.Equal(t, "Taza", back.Items[0].Name)
	assert.True(t, o.Total.Equal(back.Total))
	assert.Equal(t, 2, back.ItemCount())
}

func TestProductFilter_EscapaRegex(t *testing.T) {
	min := decimal.NewFromInt(5)
	f := productFilter(repository.ProductFilter{Category: "a.b", Search: "50%+", MinPrice: &min})

	assert.Equal(t, bson.M{"$regex": `^a\.b$`, "$options": "i"}, f["category"])
	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	assert.Len(t, or, 2)
	assert.Contains(t, f, "price")
	assert.Empty(t, productFilter(repository.ProductFilter{}))
}

func TestRepositorios_ConServidorSimulado(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decremento sin stock", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0},
		))
		err := NewProductRepository(mt.Coll).DecrementStock(context.Background(), "p1", 3)
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	})

	mt.Run("decremento aplicado", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1},
		))
		assert.NoError(t, NewProductRepository(mt.Coll).DecrementStock(context.Background(), "p1", 3))
	})

	mt.Run("decremento con cantidad no positiva", func(mt *mtest.T) {
		err := NewProductRepository(mt.Coll).DecrementStock(context.Background(), "p1", 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	mt.Run("update inexistente", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0},
		))
		err := NewProductRepository(mt.Coll).Update(context.Background(), &entity.Product{ID: "nope", Name: "Taza"})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	mt.Run("set stock", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1},
		))
		assert.NoError(t, NewProductRepository(mt.Coll).SetStock(context.Background(), "p1", 9))
	})

	mt.Run("username duplicado", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))
		err := NewUserRepository(mt.Coll).Create(context.Background(), &entity.User{ID: "u1", Username: "ana"})
		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	})
}
