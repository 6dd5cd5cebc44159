package model

import (
	"time"

	"github.com/google/uuid"
)

// Maintenance job statuses.
const (
	MaintenanceReceived   = "received"
	MaintenanceInProgress = "in_progress"
	MaintenanceDone       = "done"
)

// MaintenanceJob tracks a machine brought in for repair at a branch.
type MaintenanceJob struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	MachineID  *uuid.UUID `gorm:"type:uuid;index"`
	SerialNumber string   `gorm:"index"`
	Problem      string   `gorm:"not null"`
	Status       string   `gorm:"type:varchar(20);not null;default:'received'"`
	Notes        *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Customer *Customer `gorm:"foreignKey:CustomerID"`
}

func (j *MaintenanceJob) OwnerBranch() uuid.UUID { return j.BranchID }
