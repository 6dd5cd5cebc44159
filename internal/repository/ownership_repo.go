package repository

import (
	"context"

	"machtrade/internal/model"
	"machtrade/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OwnershipRepository interface {
	List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.Ownership, int64, error)
	CreateTx(ctx context.Context, tx *gorm.DB, o *model.Ownership) error
	// DeleteIfOwnerTx removes the ownership record only while it still points
	// at this customer (write-many through the interceptor, void path). A
	// machine resold to someone else keeps its newer record.
	DeleteIfOwnerTx(tx *gorm.DB, sc scope.EffectiveScope, machineID, customerID uuid.UUID) error
	DB() *gorm.DB
}

type ownershipRepo struct {
	db  *gorm.DB
	enf *scope.Enforcer
}

func NewOwnershipRepository(db *gorm.DB, enf *scope.Enforcer) OwnershipRepository {
	return &ownershipRepo{db: db, enf: enf}
}

func (r *ownershipRepo) DB() *gorm.DB { return r.db }

func (r *ownershipRepo) List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.Ownership, int64, error) {
	q, err := scopedQuery(r.db.WithContext(ctx).Model(&model.Ownership{}), r.enf, scope.OpReadMany, scope.ResourceOwnerships, f, sc)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []model.Ownership
	err = q.Order("acquired_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&records).Error
	return records, total, err
}

func (r *ownershipRepo) CreateTx(ctx context.Context, tx *gorm.DB, o *model.Ownership) error {
	return tx.WithContext(ctx).Create(o).Error
}

func (r *ownershipRepo) DeleteIfOwnerTx(tx *gorm.DB, sc scope.EffectiveScope, machineID, customerID uuid.UUID) error {
	f := scope.Filter{"machine_id": machineID, "customer_id": customerID}
	q, err := scopedQuery(tx.Model(&model.Ownership{}), r.enf, scope.OpWriteMany, scope.ResourceOwnerships, f, sc)
	if err != nil {
		return err
	}
	return q.Delete(&model.Ownership{}).Error
}
