package repositories

import (
	"terang/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// List returns products newest first, optionally filtered by a
	// case-insensitive name/description search term.
	List(search string, limit int) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
