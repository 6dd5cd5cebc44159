package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale kinds and statuses.
const (
	SaleCash        = "cash"
	SaleInstallment = "installment"

	SaleOngoing   = "ongoing"
	SaleCompleted = "completed"
)

// MachineSale records the sale of one machine to one customer.
// Invariant: PaidAmount ≤ TotalPrice; all money values carry exactly 2
// decimals at every arithmetic step, not only at output.
type MachineSale struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID     uuid.UUID `gorm:"type:uuid;not null;index"`
	MachineID    uuid.UUID `gorm:"type:uuid;not null;index"`
	SerialNumber string    `gorm:"not null;index"`
	CustomerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind         string    `gorm:"type:varchar(20);not null"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status       string          `gorm:"type:varchar(20);not null;default:'ongoing'"`
	SoldAt       time.Time       `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Customer     *Customer     `gorm:"foreignKey:CustomerID"`
	Machine      *Machine      `gorm:"foreignKey:MachineID"`
	Installments []Installment `gorm:"foreignKey:SaleID"`
}

func (s *MachineSale) OwnerBranch() uuid.UUID { return s.BranchID }

// Installment is one scheduled repayment of an installment sale.
// Invariant: Σ Amount over a sale's installments = TotalPrice − the upfront
// PaidAmount, exactly — any rounding remainder sits on the final installment.
type Installment struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID   uuid.UUID `gorm:"type:uuid;not null;index"`
	BranchID uuid.UUID `gorm:"type:uuid;not null;index"`
	DueDate  time.Time `gorm:"not null;index"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IsPaid   bool            `gorm:"not null;default:false"`
	PaidAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// ReceiptNumber is unique across payments and paid installments combined.
	ReceiptNumber *string `gorm:"index"`
	PaidAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i *Installment) OwnerBranch() uuid.UUID { return i.BranchID }
