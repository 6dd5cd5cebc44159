package repository

import (
	"context"

	"machtrade/internal/model"
	"machtrade/internal/scope"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleRepository interface {
	List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.MachineSale, int64, error)
	// FindByID is an unscoped unique-key read (escape hatch); installments are
	// preloaded. Callers own the EnsureInScope check.
	FindByID(ctx context.Context, id uuid.UUID) (*model.MachineSale, error)
	CreateTx(ctx context.Context, tx *gorm.DB, s *model.MachineSale) error
	// IncrementPaidTx adds amount to paid_amount as a single SQL expression —
	// never read-modify-write, so concurrent repayments cannot lose updates.
	IncrementPaidTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error
	// CompleteIfSettledTx flips status to completed when the incremented
	// paid_amount has reached total_price. Safe to call unconditionally.
	CompleteIfSettledTx(tx *gorm.DB, id uuid.UUID) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type saleRepo struct {
	db  *gorm.DB
	enf *scope.Enforcer
}

func NewSaleRepository(db *gorm.DB, enf *scope.Enforcer) SaleRepository {
	return &saleRepo{db: db, enf: enf}
}

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.MachineSale, int64, error) {
	q, err := scopedQuery(r.db.WithContext(ctx).Model(&model.MachineSale{}), r.enf, scope.OpReadMany, scope.ResourceMachineSales, f, sc)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []model.MachineSale
	err = q.Preload("Customer").Preload("Installments").
		Order("sold_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.MachineSale, error) {
	var s model.MachineSale
	err := r.db.WithContext(ctx).
		Preload("Customer").Preload("Installments").
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) CreateTx(ctx context.Context, tx *gorm.DB, s *model.MachineSale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) IncrementPaidTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	return tx.Model(&model.MachineSale{}).
		Where("id = ?", id).
		UpdateColumn("paid_amount", gorm.Expr("paid_amount + ?", amount)).Error
}

func (r *saleRepo) CompleteIfSettledTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.MachineSale{}).
		Where("id = ? AND paid_amount >= total_price", id).
		Update("status", model.SaleCompleted).Error
}

func (r *saleRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.MachineSale{}, "id = ?", id).Error
}
