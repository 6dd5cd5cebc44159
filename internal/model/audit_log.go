package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only trail of sensitive mutations. Snapshot holds the
// full JSON state of the affected aggregate at the time of the action.
// Entries are never updated or deleted.
type AuditLog struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Action   string    `gorm:"not null"` // "sale.create" | "sale.void" | "installment.pay" | ...
	Entity   string    `gorm:"not null"`
	EntityID uuid.UUID `gorm:"type:uuid;not null;index"`
	Snapshot string    `gorm:"type:jsonb"`

	CreatedAt time.Time
}

func (a *AuditLog) OwnerBranch() uuid.UUID { return a.BranchID }
