package repository

import (
	"context"

	"machtrade/internal/model"
	"machtrade/internal/scope"

	"gorm.io/gorm"
)

type AuditRepository interface {
	List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.AuditLog, int64, error)
	// CreateTx appends an entry inside a sale transaction.
	CreateTx(ctx context.Context, tx *gorm.DB, entry *model.AuditLog) error
	// Create appends an entry outside any transaction (async best-effort path).
	Create(ctx context.Context, entry *model.AuditLog) error
	DB() *gorm.DB
}

type auditRepo struct {
	db  *gorm.DB
	enf *scope.Enforcer
}

func NewAuditRepository(db *gorm.DB, enf *scope.Enforcer) AuditRepository {
	return &auditRepo{db: db, enf: enf}
}

func (r *auditRepo) DB() *gorm.DB { return r.db }

func (r *auditRepo) List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.AuditLog, int64, error) {
	q, err := scopedQuery(r.db.WithContext(ctx).Model(&model.AuditLog{}), r.enf, scope.OpReadMany, scope.ResourceAuditLogs, f, sc)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.AuditLog
	err = q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&entries).Error
	return entries, total, err
}

func (r *auditRepo) CreateTx(ctx context.Context, tx *gorm.DB, entry *model.AuditLog) error {
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *auditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
