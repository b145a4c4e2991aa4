package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

func TestCart_AddAcumula(t *testing.T) {
	c := entity.NewCart("u1")
	c.Add("p1", 2)
	c.Add("p2", 1)
	c.Add("p1", 3)

	assert.Equal(t, 5, c.Quantity("p1"))
	assert.Equal(t, 1, c.Quantity("p2"))
	assert.Len(t, c.Items, 2)
	assert.Equal(t, "p1", c.Items[0].ProductID, "se conserva el orden de inserción")
}

func TestCart_SetYRemove(t *testing.T) {
	c := entity.NewCart("u1")
	c.Add("p1", 2)

	assert.False(t, c.Set("p9", 4))
	assert.True(t, c.Set("p1", 7))
	assert.Equal(t, 7, c.Quantity("p1"))

	c.Remove("p9")
	assert.Len(t, c.Items, 1)
	c.Remove("p1")
	assert.True(t, c.IsEmpty())
}

func TestCart_CloneEsIndependiente(t *testing.T) {
	c := entity.NewCart("u1")
	c.Add("p1", 1)
	cp := c.Clone()
	cp.Add("p1", 1)

	assert.Equal(t, 1, c.Quantity("p1"))
	assert.Equal(t, 2, cp.Quantity("p1"))
}

func TestCart_AddRespetaMaximoPorLinea(t *testing.T) {
	c := entity.NewCart("u1")

	assert.True(t, c.Add("p1", entity.MaxItemQuantity))
	assert.False(t, c.Add("p1", 2), "la suma desbordaría el máximo")
	assert.Equal(t, entity.MaxItemQuantity, c.Quantity("p1"))

	assert.False(t, c.Add("p2", 0))
	assert.False(t, c.Add("p2", -1))
	assert.False(t, c.Add("p2", entity.MaxItemQuantity+1))
	assert.Len(t, c.Items, 1)
}

func TestProduct_CanFulfilRechazaCantidadesFueraDeRango(t *testing.T) {
	p := &entity.Product{ID: "p1", Stock: 5}

	assert.True(t, p.CanFulfil(5))
	assert.False(t, p.CanFulfil(6))
	assert.False(t, p.CanFulfil(0))
	assert.False(t, p.CanFulfil(-3))
}
