package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleStaff    Role = "Staff"
	RoleSecurity Role = "Security"
	RoleStudent  Role = "Student"
)

// User is the durable identity record behind every login path.
//
// Local accounts are keyed by username; provider accounts carry an empty
// password hash and are keyed by (email, is_provider_account). The composite
// unique index lets a locally registered email and a provider identity with
// the same address coexist as two separate rows.
type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	FullName     string  `gorm:"size:255" json:"full_name"`
	Email        string  `gorm:"size:255;not null;uniqueIndex:idx_users_email_provider" json:"email"`
	Username     *string `gorm:"size:100;uniqueIndex" json:"username,omitempty"`
	PasswordHash string  `gorm:"size:255" json:"-"`
	Role         Role    `gorm:"size:20;default:'Student'" json:"role"`

	// Provider linkage
	IsProviderAccount bool    `gorm:"not null;default:false;uniqueIndex:idx_users_email_provider" json:"-"`
	ProviderID        *string `gorm:"size:255;index" json:"-"`

	// Password reset grant; a new request replaces any prior pair.
	ResetToken       *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
