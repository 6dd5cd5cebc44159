package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment types.
const (
	PaymentSaleUpfront = "sale_upfront"
	PaymentInstallment = "installment"
)

// Payment is an immutable entry in the money ledger. Payments are never
// updated — voiding a sale deletes the linked payment, it never mutates it.
type Payment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	SaleID     *uuid.UUID `gorm:"type:uuid;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ReceiptNumber string       `gorm:"uniqueIndex;not null"`
	Type          string       `gorm:"type:varchar(20);not null"`
	Place         string       `gorm:"not null"`

	CreatedAt time.Time
}

func (p *Payment) OwnerBranch() uuid.UUID { return p.BranchID }
