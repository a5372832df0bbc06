package repositories

import (
	"terang/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetByUserID loads a cart with its items and their products.
	GetByUserID(userID string) (*models.Cart, error)
	Create(cart *models.Cart) error
	GetItem(cartID, productID string) (*models.CartItem, error)
	// SaveItem creates the item when new, otherwise updates it in place.
	SaveItem(item *models.CartItem) error
	DeleteItem(id string) error
	// InTransaction runs fn against a repository bound to a single
	// transaction. An error from fn rolls back every write made
	// through that repository.
	InTransaction(fn func(CartRepository) error) error
}
