package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// ImageList stores an ordered list of image URIs as a JSON text column.
type ImageList []string

// Value implements driver.Valuer.
func (l ImageList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal image list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported image list column type %T", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

// Product represents a catalog product. A nil Stock means the product
// has no stock tracking (unlimited availability).
type Product struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name         string    `json:"name" validate:"required,min=2,max=200"`
	Description  string    `json:"description" validate:"omitempty,max=2000"`
	Price        float64   `json:"price" validate:"gte=0"`
	Stock        *int      `json:"stock" validate:"omitempty,gte=0"`
	Dimension    string    `json:"dimension,omitempty"`
	MaterialCare string    `json:"materialCare,omitempty"`
	Images       ImageList `json:"images" gorm:"type:text"`
	CategoryID   string    `json:"categoryId" gorm:"type:varchar(36);index"`
	Category     *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	gorm.Model             // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// AvailableStock reports the purchasable stock, floored at zero. The
// second return is false when the product is not stock-tracked.
func (p *Product) AvailableStock() (int, bool) {
	if p == nil || p.Stock == nil {
		return 0, false
	}
	if *p.Stock < 0 {
		return 0, true
	}
	return *p.Stock, true
}

// Thumbnail returns the first image URI, or nil when none exist.
func (p *Product) Thumbnail() *string {
	if p == nil || len(p.Images) == 0 {
		return nil
	}
	return &p.Images[0]
}
