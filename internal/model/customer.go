package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer belongs to the branch that registered it.
type Customer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"index;not null"`
	Phone      *string
	Address    *string
	NationalID *string `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Branch *Branch `gorm:"foreignKey:BranchID"`
}

func (c *Customer) OwnerBranch() uuid.UUID { return c.BranchID }
