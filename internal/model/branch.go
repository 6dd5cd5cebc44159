package model

import (
	"time"

	"github.com/google/uuid"
)

// Branch is the tenant boundary: every business record belongs to exactly one.
type Branch struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name    string    `gorm:"uniqueIndex;not null"`
	Address *string
	Phone   *string
	Active  bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnerBranch scopes a branch by its own primary key.
func (b *Branch) OwnerBranch() uuid.UUID { return b.ID }
