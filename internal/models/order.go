package models

import "gorm.io/gorm"

// ShippingInfo is the destination snapshot frozen into an order. It is
// copied from a saved address or inline input, never referenced live.
type ShippingInfo struct {
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
}

// Order is an immutable record of a completed checkout. No operation
// updates an order after creation.
type Order struct {
	ID          string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string       `json:"user_id" gorm:"type:varchar(64);index"`
	OrderNumber string       `json:"orderNumber" gorm:"uniqueIndex;type:varchar(40)"`
	Shipping    ShippingInfo `json:"shipping" gorm:"embedded;embeddedPrefix:ship_"`
	Total       float64      `json:"total"`
	Items       []OrderItem  `json:"items" gorm:"foreignKey:OrderID"`
	gorm.Model
}

// OrderItem freezes the product name, unit price, quantity and subtotal
// at purchase time. These values are a permanent historical record and
// are never recomputed from current product state.
type OrderItem struct {
	ID        string   `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string   `json:"order_id" gorm:"type:varchar(36);index"`
	ProductID string   `json:"product_id" gorm:"type:varchar(36)"`
	Name      string   `json:"productName"`
	Price     float64  `json:"price"`
	Quantity  int      `json:"quantity"`
	Subtotal  float64  `json:"subtotal"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	gorm.Model
}
