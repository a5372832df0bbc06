package repositories

import (
	"errors"
	"fmt"

	"terang/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create writes the order row, every order item and the stock decrement
// for each stock-tracked product inside a single transaction. Any
// failure rolls the whole checkout back: no orphan items, no partial
// decrement. Stock is re-read inside the transaction and floored at
// zero, matching the checkout contract.
func (r *GORMOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for i := range items {
			item := &items[i]
			if item.ID == "" {
				item.ID = uuid.New().String()
			}
			item.OrderID = order.ID
			// Clear the association so GORM doesn't try to upsert
			// the product row alongside the item.
			item.Product = nil
			if err := tx.Create(item).Error; err != nil {
				return err
			}

			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				return err
			}
			if product.Stock != nil {
				newQty := *product.Stock - item.Quantity
				if newQty < 0 {
					newQty = 0
				}
				if err := tx.Model(&product).Update("stock", newQty).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order with its items and product display info.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items.Product").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// ListByUser retrieves a user's orders, newest first, with items.
func (r *GORMOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}
