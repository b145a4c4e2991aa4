package entity

import "time"

// Roles válidos para User.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// ValidRole indica si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleAdmin
}

// User representa una cuenta de la tienda.
type User struct {
	ID           string
	Username     string // único, normalizado con case folding
	Email        string
	FullName     string
	PasswordHash string // bcrypt
	Role         string // customer, admin
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
