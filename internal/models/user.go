package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a shopper account. Login is passwordless: a one-time
// code is mailed to the address and verified within its expiry window.
// Only a bcrypt hash of the code is stored.
type User struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email      string     `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Mobile     string     `json:"mobile,omitempty" gorm:"type:varchar(32)"`
	IsVerified bool       `json:"is_verified"`
	OTPHash    string     `json:"-" gorm:"type:varchar(255)"` // No json tag value for security
	OTPExpires *time.Time `json:"-"`
	gorm.Model
}
