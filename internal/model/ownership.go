package model

import (
	"time"

	"github.com/google/uuid"
)

// Ownership is the derived record linking a sold machine to its current
// owner. Created by the sale transaction, removed when the sale is voided.
type Ownership struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID   uuid.UUID `gorm:"type:uuid;not null;index"`
	MachineID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	AcquiredAt time.Time `gorm:"not null"`

	CreatedAt time.Time
}

func (o *Ownership) OwnerBranch() uuid.UUID { return o.BranchID }
