package services

import (
	"fmt"
	"strings"

	"terang/internal/apperr"
	"terang/internal/models"
	"terang/internal/repositories"
)

// CustomerInfoInput is the payload for saving an address-book entry.
type CustomerInfoInput struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	IsDefault    bool   `json:"isDefault"`
}

// CustomerInfoService manages the address book. The order service reads
// saved entries when resolving a shipping destination.
type CustomerInfoService struct {
	repo repositories.CustomerInfoRepository
}

// NewCustomerInfoService creates a new CustomerInfoService.
func NewCustomerInfoService(repo repositories.CustomerInfoRepository) *CustomerInfoService {
	return &CustomerInfoService{
		repo: repo,
	}
}

// ListAddresses returns a user's saved addresses, default first.
func (s *CustomerInfoService) ListAddresses(userID string) ([]models.CustomerInfo, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.New(apperr.BadRequest, "userId query parameter is required")
	}
	entries, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, apperr.Wrap(err, "Unable to load addresses")
	}
	return entries, nil
}

// SaveAddress validates and persists an address entry. Flagging it as
// default clears the flag on the user's other entries.
func (s *CustomerInfoService) SaveAddress(input CustomerInfoInput) (*models.CustomerInfo, error) {
	required := []struct {
		field string
		value string
	}{
		{"userId", input.UserID},
		{"name", input.Name},
		{"phone", input.Phone},
		{"addressLine1", input.AddressLine1},
		{"city", input.City},
		{"state", input.State},
		{"postalCode", input.PostalCode},
		{"country", input.Country},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, apperr.New(apperr.BadRequest, fmt.Sprintf("%s is required", f.field))
		}
	}

	entry := &models.CustomerInfo{
		UserID:       strings.TrimSpace(input.UserID),
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:        strings.TrimSpace(input.Phone),
		AddressLine1: strings.TrimSpace(input.AddressLine1),
		AddressLine2: strings.TrimSpace(input.AddressLine2),
		City:         strings.TrimSpace(input.City),
		State:        strings.TrimSpace(input.State),
		PostalCode:   strings.TrimSpace(input.PostalCode),
		Country:      strings.TrimSpace(input.Country),
		IsDefault:    input.IsDefault,
	}

	if err := s.repo.Save(entry); err != nil {
		return nil, apperr.Wrap(err, "Unable to save customer info")
	}
	return entry, nil
}
