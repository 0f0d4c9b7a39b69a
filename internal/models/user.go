package models

import "time"

// User role constants.
const (
	UserRoleAdmin  = "admin"
	UserRoleEditor = "editor"
)

// User status constants.
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// User is an admin panel account.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Email        string    `gorm:"size:160;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Role         string    `gorm:"size:32;not null;default:editor" json:"role"`
	Status       string    `gorm:"size:32;not null;default:active" json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
