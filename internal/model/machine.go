package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Machine statuses.
const (
	MachineInStock     = "in_stock"
	MachineSold        = "sold"
	MachineMaintenance = "maintenance"
)

// Machine is one sellable inventory unit, identified by its serial number.
type Machine struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID     uuid.UUID `gorm:"type:uuid;not null;index"`
	SerialNumber string    `gorm:"uniqueIndex;not null"`
	Model        string    `gorm:"not null"`
	Brand        string
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'in_stock'"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Branch *Branch `gorm:"foreignKey:BranchID"`
}

func (m *Machine) OwnerBranch() uuid.UUID { return m.BranchID }
