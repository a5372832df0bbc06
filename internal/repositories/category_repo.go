package repositories

import (
	"terang/internal/models"
)

// CategoryRepository defines the interface for category data access.
// Categories are read-only relative to the cart/order core; writes come
// from catalog management only.
type CategoryRepository interface {
	GetAll() ([]models.Category, error)
	GetByID(id string) (*models.Category, error)
	GetByName(name string) (*models.Category, error)
	Create(category *models.Category) error
}
