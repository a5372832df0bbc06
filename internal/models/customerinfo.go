package models

import "gorm.io/gorm"

// CustomerInfo is a saved address-book entry. At most one entry per
// user may be flagged as the default; saving a new default clears the
// flag on the others.
type CustomerInfo struct {
	ID           string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID       string `json:"userId" gorm:"type:varchar(64);index"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	IsDefault    bool   `json:"isDefault"`
	gorm.Model
}
