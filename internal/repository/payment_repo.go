package repository

import (
	"context"

	"machtrade/internal/model"
	"machtrade/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.Payment, int64, error)
	CreateTx(ctx context.Context, tx *gorm.DB, p *model.Payment) error
	// ReceiptExists checks the payment side of the receipt-uniqueness
	// invariant; services combine it with InstallmentRepository.ReceiptTaken.
	ReceiptExists(ctx context.Context, receipt string) (bool, error)
	// DeleteBySaleTx removes every payment linked to a sale through the
	// interceptor (write-many, void path).
	DeleteBySaleTx(tx *gorm.DB, sc scope.EffectiveScope, saleID uuid.UUID) error
	DB() *gorm.DB
}

type paymentRepo struct {
	db  *gorm.DB
	enf *scope.Enforcer
}

func NewPaymentRepository(db *gorm.DB, enf *scope.Enforcer) PaymentRepository {
	return &paymentRepo{db: db, enf: enf}
}

func (r *paymentRepo) DB() *gorm.DB { return r.db }

func (r *paymentRepo) List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.Payment, int64, error) {
	q, err := scopedQuery(r.db.WithContext(ctx).Model(&model.Payment{}), r.enf, scope.OpReadMany, scope.ResourcePayments, f, sc)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []model.Payment
	err = q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&payments).Error
	return payments, total, err
}

func (r *paymentRepo) CreateTx(ctx context.Context, tx *gorm.DB, p *model.Payment) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *paymentRepo) ReceiptExists(ctx context.Context, receipt string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("receipt_number = ?", receipt).
		Count(&count).Error
	return count > 0, err
}

func (r *paymentRepo) DeleteBySaleTx(tx *gorm.DB, sc scope.EffectiveScope, saleID uuid.UUID) error {
	f := scope.Filter{"sale_id": saleID}
	q, err := scopedQuery(tx.Model(&model.Payment{}), r.enf, scope.OpWriteMany, scope.ResourcePayments, f, sc)
	if err != nil {
		return err
	}
	return q.Delete(&model.Payment{}).Error
}
