package service

import (
	"time"

	"machtrade/internal/apperr"
	"machtrade/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// generateInstallments splits remaining into n monthly installments starting
// one month after from. Every amount carries exactly 2 decimals; the rounding
// remainder lands on the final installment so the schedule sums to remaining
// to the cent.
func generateInstallments(saleID, branchID uuid.UUID, remaining decimal.Decimal, n int, from time.Time) ([]model.Installment, error) {
	if n < 1 {
		return nil, apperr.Validation("installment count must be at least 1")
	}
	if !remaining.IsPositive() {
		return nil, apperr.Validation("nothing left to schedule: remaining amount is not positive")
	}

	share := remaining.DivRound(decimal.NewFromInt(int64(n)), 2)
	last := remaining.Sub(share.Mul(decimal.NewFromInt(int64(n - 1))))
	if !last.IsPositive() {
		return nil, apperr.Validation("too many installments for the remaining amount")
	}

	installments := make([]model.Installment, n)
	for i := 0; i < n; i++ {
		amount := share
		if i == n-1 {
			amount = last
		}
		installments[i] = model.Installment{
			SaleID:   saleID,
			BranchID: branchID,
			DueDate:  from.AddDate(0, i+1, 0),
			Amount:   amount,
		}
	}
	return installments, nil
}
