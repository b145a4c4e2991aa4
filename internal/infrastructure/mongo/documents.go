package mongo

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	FullName     string    `bson:"full_name"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type productDoc struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Stock       int                  `bson:"stock"`
	Category    string               `bson:"category"`
	ImageURL    string               `bson:"image_url"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

type cartItemDoc struct {
	ProductID string `bson:"product_id"`
	Quantity  int    `bson:"quantity"`
}

// cartDoc un documento por usuario: _id = user id.
type cartDoc struct {
	UserID    string        `bson:"_id"`
	Items     []cartItemDoc `bson:"items"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

type orderItemDoc struct {
	ProductID string               `bson:"product_id"`
	Name      string               `bson:"name"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
	Quantity  int                  `bson:"quantity"`
	Subtotal  primitive.Decimal128 `bson:"subtotal"`
}

type orderDoc struct {
	ID        string               `bson:"_id"`
	UserID    string               `bson:"user_id"`
	Items     []orderItemDoc       `bson:"items"`
	Total     primitive.Decimal128 `bson:"total"`
	Status    string               `bson:"status"`
	CreatedAt time.Time            `bson:"created_at"`
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func newUserDoc(u *entity.User) userDoc {
	return userDoc{
		ID: u.ID, Username: u.Username, Email: u.Email, FullName: u.FullName,
		PasswordHash: u.PasswordHash, Role: u.Role, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func (d userDoc) entity() *entity.User {
	return &entity.User{
		ID: d.ID, Username: d.Username, Email: d.Email, FullName: d.FullName,
		PasswordHash: d.PasswordHash, Role: d.Role, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

func newProductDoc(p *entity.Product) productDoc {
	return productDoc{
		ID: p.ID, Name: p.Name, Description: p.Description, Price: toDecimal128(p.Price), Stock: p.Stock,
		Category: p.Category, ImageURL: p.ImageURL, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func (d productDoc) entity() *entity.Product {
	return &entity.Product{
		ID: d.ID, Name: d.Name, Description: d.Description, Price: fromDecimal128(d.Price), Stock: d.Stock,
		Category: d.Category, ImageURL: d.ImageURL, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

func newCartDoc(c *entity.Cart) cartDoc {
	doc := cartDoc{UserID: c.UserID, Items: make([]cartItemDoc, 0, len(c.Items)), UpdatedAt: c.UpdatedAt}
	for _, it := range c.Items {
		doc.Items = append(doc.Items, cartItemDoc{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return doc
}

func (d cartDoc) entity() *entity.Cart {
	c := entity.NewCart(d.UserID)
	c.UpdatedAt = d.UpdatedAt
	for _, it := range d.Items {
		c.Items = append(c.Items, entity.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return c
}

func newOrderDoc(o *entity.Order) orderDoc {
	doc := orderDoc{
		ID: o.ID, UserID: o.UserID, Items: make([]orderItemDoc, 0, len(o.Items)),
		Total: toDecimal128(o.Total), Status: o.Status, CreatedAt: o.CreatedAt,
	}
	for _, it := range o.Items {
		doc.Items = append(doc.Items, orderItemDoc{
			ProductID: it.ProductID, Name: it.Name, UnitPrice: toDecimal128(it.UnitPrice),
			Quantity: it.Quantity, Subtotal: toDecimal128(it.Subtotal),
		})
	}
	return doc
}

func (d orderDoc) entity() *entity.Order {
	o := &entity.Order{
		ID: d.ID, UserID: d.UserID, Items: make([]entity.OrderItem, 0, len(d.Items)),
		Total: fromDecimal128(d.Total), Status: d.Status, CreatedAt: d.CreatedAt,
	}
	for _, it := range d.Items {
		o.Items = append(o.Items, entity.OrderItem{
			ProductID: it.ProductID, Name: it.Name, UnitPrice: fromDecimal128(it.UnitPrice),
			Quantity: it.Quantity, Subtotal: fromDecimal128(it.Subtotal),
		})
	}
	return o
}
