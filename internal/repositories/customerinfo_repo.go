package repositories

import (
	"terang/internal/models"
)

// CustomerInfoRepository defines the interface for address-book access.
type CustomerInfoRepository interface {
	// ListByUser returns entries with the default first, then most
	// recently updated.
	ListByUser(userID string) ([]models.CustomerInfo, error)
	// GetForUser loads an entry only when it belongs to the user.
	GetForUser(id, userID string) (*models.CustomerInfo, error)
	// Save persists the entry; when it is flagged default, the default
	// flag on the user's other entries is cleared in the same
	// transaction.
	Save(info *models.CustomerInfo) error
}
