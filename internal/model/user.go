package model

import (
	"time"

	"github.com/google/uuid"
)

// User stores system users with role-based access.
// Role: "global" (head office, all branches) | "branch" (bound to its set).
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	// HomeBranchID is the user's primary branch; nil for pure head-office users.
	HomeBranchID *uuid.UUID `gorm:"type:uuid"`
	Active       bool       `gorm:"not null;default:true"`

	// Branches the user is authorized to operate in.
	Branches []Branch `gorm:"many2many:user_branches"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
