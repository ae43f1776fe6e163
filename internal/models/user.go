package models

import (
	"time"
)

// User is an account managed by the local identity provider.
type User struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	DisplayName  string
	Disabled     bool `gorm:"not null;default:false"`

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsDisabled returns true if the account may not sign in
func (u *User) IsDisabled() bool {
	return u.Disabled
}
