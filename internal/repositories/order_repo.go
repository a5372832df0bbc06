package repositories

import (
	"terang/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create persists an order, its items and the matching stock
	// decrements in one all-or-nothing transaction.
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id string) (*models.Order, error)
	ListByUser(userID string) ([]models.Order, error)
}
