package repositories

import (
	"errors"
	"fmt"

	"terang/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCustomerInfoRepository is a GORM implementation of CustomerInfoRepository.
type GORMCustomerInfoRepository struct {
	db *gorm.DB
}

// NewGORMCustomerInfoRepository creates a new instance of GORMCustomerInfoRepository.
func NewGORMCustomerInfoRepository(db *gorm.DB) *GORMCustomerInfoRepository {
	return &GORMCustomerInfoRepository{
		db: db,
	}
}

// ListByUser returns a user's saved addresses, default entry first.
func (r *GORMCustomerInfoRepository) ListByUser(userID string) ([]models.CustomerInfo, error) {
	var entries []models.CustomerInfo
	err := r.db.Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("updated_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list customer info for user %s: %w", userID, err)
	}
	return entries, nil
}

// GetForUser loads an address entry scoped to its owner.
func (r *GORMCustomerInfoRepository) GetForUser(id, userID string) (*models.CustomerInfo, error) {
	var entry models.CustomerInfo
	err := r.db.First(&entry, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer info %s: %w", id, err)
	}
	return &entry, nil
}

// Save persists an address entry. Saving a default entry clears the
// flag on the user's other entries inside the same transaction, keeping
// at most one default per user.
func (r *GORMCustomerInfoRepository) Save(info *models.CustomerInfo) error {
	if info.ID == "" {
		info.ID = uuid.New().String()
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if info.IsDefault {
			err := tx.Model(&models.CustomerInfo{}).
				Where("user_id = ? AND id <> ?", info.UserID, info.ID).
				Update("is_default", false).Error
			if err != nil {
				return err
			}
		}
		return tx.Save(info).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save customer info: %w", err)
	}
	return nil
}
