package models

import "time"

// User mirrors the users table.
type User struct {
	UserID       string `json:"userID"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`

	RefreshTokenHash       *string    `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
}
