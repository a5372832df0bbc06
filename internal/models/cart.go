package models

import "gorm.io/gorm"

// Cart holds a user's pending purchase lines. There is at most one cart
// per user id. Guest shoppers use a client-generated id; carts carry no
// foreign key to users so no placeholder account is needed.
type Cart struct {
	ID     string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID string     `json:"user_id" gorm:"uniqueIndex;type:varchar(64)"`
	Items  []CartItem `json:"items" gorm:"foreignKey:CartID"`
	gorm.Model
}

// CartItem is one product line in a cart. Name and Price are snapshots
// taken when the line was added; the serving quantity is clamped to the
// product's current stock at read time.
type CartItem struct {
	ID        string   `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID    string   `json:"cart_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_product"`
	ProductID string   `json:"product_id" gorm:"type:varchar(36);uniqueIndex:idx_cart_product"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	gorm.Model
}

// CartItemView is a cart line as served to clients, with the quantity
// clamped to current stock.
type CartItemView struct {
	ProductID   string  `json:"productId"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Image       *string `json:"image"`
	MaxQuantity *int    `json:"maxQuantity"`
}

// CartView is the serialized form of a cart, recomputed from current
// stock and price on every read.
type CartView struct {
	UserID string         `json:"userId"`
	Items  []CartItemView `json:"items"`
	Total  float64        `json:"total"`
}
