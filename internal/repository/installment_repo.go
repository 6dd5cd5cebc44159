package repository

import (
	"context"
	"time"

	"machtrade/internal/model"
	"machtrade/internal/scope"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InstallmentRepository interface {
	List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.Installment, int64, error)
	// FindByID is an unscoped unique-key read; callers own EnsureInScope.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Installment, error)
	CreateBatchTx(ctx context.Context, tx *gorm.DB, installments []model.Installment) error
	// MarkPaidTx marks one installment paid, guarded by is_paid = false.
	// Returns rows affected: zero means a concurrent repayment won the race.
	MarkPaidTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal, receipt string, paidAt time.Time) (int64, error)
	// DeleteUnpaidBySaleTx removes a sale's open installments through the
	// interceptor (write-many).
	DeleteUnpaidBySaleTx(tx *gorm.DB, sc scope.EffectiveScope, saleID uuid.UUID) error
	// DeleteBySaleTx removes all of a sale's installments (void path).
	DeleteBySaleTx(tx *gorm.DB, sc scope.EffectiveScope, saleID uuid.UUID) error
	// ReceiptTaken reports whether a receipt number is already used by a paid
	// installment.
	ReceiptTaken(ctx context.Context, receipt string) (bool, error)
	DB() *gorm.DB
}

type installmentRepo struct {
	db  *gorm.DB
	enf *scope.Enforcer
}

func NewInstallmentRepository(db *gorm.DB, enf *scope.Enforcer) InstallmentRepository {
	return &installmentRepo{db: db, enf: enf}
}

func (r *installmentRepo) DB() *gorm.DB { return r.db }

func (r *installmentRepo) List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.Installment, int64, error) {
	q, err := scopedQuery(r.db.WithContext(ctx).Model(&model.Installment{}), r.enf, scope.OpReadMany, scope.ResourceInstallments, f, sc)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var installments []model.Installment
	err = q.Order("due_date ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&installments).Error
	return installments, total, err
}

func (r *installmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Installment, error) {
	var ins model.Installment
	err := r.db.WithContext(ctx).First(&ins, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ins, nil
}

func (r *installmentRepo) CreateBatchTx(ctx context.Context, tx *gorm.DB, installments []model.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&installments).Error
}

func (r *installmentRepo) MarkPaidTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal, receipt string, paidAt time.Time) (int64, error) {
	res := tx.Model(&model.Installment{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]interface{}{
			"is_paid":        true,
			"paid_amount":    amount,
			"receipt_number": receipt,
			"paid_at":        paidAt,
		})
	return res.RowsAffected, res.Error
}

func (r *installmentRepo) DeleteUnpaidBySaleTx(tx *gorm.DB, sc scope.EffectiveScope, saleID uuid.UUID) error {
	return r.deleteBySale(tx, sc, scope.Filter{"sale_id": saleID, "is_paid": false})
}

func (r *installmentRepo) DeleteBySaleTx(tx *gorm.DB, sc scope.EffectiveScope, saleID uuid.UUID) error {
	return r.deleteBySale(tx, sc, scope.Filter{"sale_id": saleID})
}

func (r *installmentRepo) deleteBySale(tx *gorm.DB, sc scope.EffectiveScope, f scope.Filter) error {
	q, err := scopedQuery(tx.Model(&model.Installment{}), r.enf, scope.OpWriteMany, scope.ResourceInstallments, f, sc)
	if err != nil {
		return err
	}
	return q.Delete(&model.Installment{}).Error
}

func (r *installmentRepo) ReceiptTaken(ctx context.Context, receipt string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Installment{}).
		Where("is_paid = ? AND receipt_number = ?", true, receipt).
		Count(&count).Error
	return count > 0, err
}
