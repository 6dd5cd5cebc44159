package service

import (
	"testing"
	"time"

	"machtrade/internal/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInstallments_EvenSplit(t *testing.T) {
	from := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	remaining := decimal.RequireFromString("9000.00")

	ins, err := generateInstallments(uuid.New(), uuid.New(), remaining, 3, from)

	require.NoError(t, err)
	require.Len(t, ins, 3)
	for i, in := range ins {
		assert.True(t, in.Amount.Equal(decimal.RequireFromString("3000.00")), "installment %d", i)
		assert.Equal(t, from.AddDate(0, i+1, 0), in.DueDate)
	}
}

func TestGenerateInstallments_RemainderOnLast(t *testing.T) {
	remaining := decimal.RequireFromString("1000.00")

	ins, err := generateInstallments(uuid.New(), uuid.New(), remaining, 3, time.Now())

	require.NoError(t, err)
	require.Len(t, ins, 3)
	assert.True(t, ins[0].Amount.Equal(decimal.RequireFromString("333.33")))
	assert.True(t, ins[1].Amount.Equal(decimal.RequireFromString("333.33")))
	assert.True(t, ins[2].Amount.Equal(decimal.RequireFromString("333.34")))

	sum := decimal.Zero
	for _, in := range ins {
		sum = sum.Add(in.Amount)
	}
	assert.True(t, sum.Equal(remaining))
}

func TestGenerateInstallments_RoundUpShare(t *testing.T) {
	// 100 / 3 rounds the share up to 33.34, so the last shrinks to 33.32.
	remaining := decimal.RequireFromString("100.00")

	ins, err := generateInstallments(uuid.New(), uuid.New(), remaining, 3, time.Now())

	require.NoError(t, err)
	sum := decimal.Zero
	for _, in := range ins {
		assert.True(t, in.Amount.IsPositive())
		sum = sum.Add(in.Amount)
	}
	assert.True(t, sum.Equal(remaining))
}

func TestGenerateInstallments_SingleInstallment(t *testing.T) {
	remaining := decimal.RequireFromString("750.50")

	ins, err := generateInstallments(uuid.New(), uuid.New(), remaining, 1, time.Now())

	require.NoError(t, err)
	require.Len(t, ins, 1)
	assert.True(t, ins[0].Amount.Equal(remaining))
}

func TestGenerateInstallments_TooManyInstallments(t *testing.T) {
	// 0.02 over 3 rounds the share to 0.01 and leaves a non-positive last.
	_, err := generateInstallments(uuid.New(), uuid.New(), decimal.RequireFromString("0.02"), 3, time.Now())

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestGenerateInstallments_InvalidInputs(t *testing.T) {
	_, err := generateInstallments(uuid.New(), uuid.New(), decimal.RequireFromString("100"), 0, time.Now())
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = generateInstallments(uuid.New(), uuid.New(), decimal.Zero, 2, time.Now())
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = generateInstallments(uuid.New(), uuid.New(), decimal.RequireFromString("-10"), 2, time.Now())
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestGenerateInstallments_StampsSaleAndBranch(t *testing.T) {
	saleID, branchID := uuid.New(), uuid.New()

	ins, err := generateInstallments(saleID, branchID, decimal.RequireFromString("200"), 2, time.Now())

	require.NoError(t, err)
	for _, in := range ins {
		assert.Equal(t, saleID, in.SaleID)
		assert.Equal(t, branchID, in.BranchID)
		assert.False(t, in.IsPaid)
	}
}
