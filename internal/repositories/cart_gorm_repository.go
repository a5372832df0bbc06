package repositories

import (
	"errors"
	"fmt"

	"terang/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUserID loads the cart for a user together with its items and
// each item's product, for read-time stock clamping.
func (r *GORMCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items.Product").First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// Create creates a new cart. A unique violation on user_id surfaces as
// ErrDuplicateKey so callers can re-fetch the winning row.
func (r *GORMCartRepository) Create(cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if err := r.db.Create(cart).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// GetItem retrieves one cart line by (cartID, productID).
func (r *GORMCartRepository) GetItem(cartID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return &item, nil
}

// SaveItem upserts a cart line.
func (r *GORMCartRepository) SaveItem(item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to save cart item: %w", translateError(err))
	}
	return nil
}

// DeleteItem removes a cart line by its row ID. The delete is hard: a
// soft-deleted row would still occupy the (cart_id, product_id) unique
// index and block re-adding the product.
func (r *GORMCartRepository) DeleteItem(id string) error {
	res := r.db.Unscoped().Delete(&models.CartItem{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// InTransaction runs fn against a repository bound to one transaction.
func (r *GORMCartRepository) InTransaction(fn func(CartRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GORMCartRepository{db: tx})
	})
}
