package entity

import (
	"math"
	"time"
)

// MaxItemQuantity tope de unidades por línea; cabe en un INTEGER de Postgres.
const MaxItemQuantity = math.MaxInt32

// CartItem línea del carrito. 1 <= Quantity <= MaxItemQuantity.
type CartItem struct {
	ProductID string
	Quantity  int
}

// Cart carrito de un usuario. Se crea perezosamente en el primer AddItem.
// Items conserva el orden de inserción; ProductID es único dentro del carrito.
type Cart struct {
	UserID    string
	Items     []CartItem
	UpdatedAt time.Time
}

// NewCart devuelve un carrito vacío para userID.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

// IsEmpty indica si el carrito no tiene líneas.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

func (c *Cart) index(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Quantity devuelve la cantidad de productID en el carrito (0 si no está).
func (c *Cart) Quantity(productID string) int {
	if i := c.index(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// ValidQuantity indica si qty está dentro de [1, MaxItemQuantity].
func ValidQuantity(qty int) bool {
	return qty >= 1 && qty <= MaxItemQuantity
}

// Add suma qty a la línea de productID, creándola si no existe.
// Devuelve false sin tocar el carrito si qty o la suma resultante salen de rango.
func (c *Cart) Add(productID string, qty int) bool {
	if !ValidQuantity(qty) {
		return false
	}
	if i := c.index(productID); i >= 0 {
		if qty > MaxItemQuantity-c.Items[i].Quantity {
			return false
		}
		c.Items[i].Quantity += qty
		return true
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: qty})
	return true
}

// Set reemplaza la cantidad de una línea existente. Devuelve false si la línea no existe.
func (c *Cart) Set(productID string, qty int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity = qty
	return true
}

// Remove quita la línea de productID; no hace nada si no existe.
func (c *Cart) Remove(productID string) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

// Clear vacía el carrito.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

// Clone copia profunda del carrito.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}
