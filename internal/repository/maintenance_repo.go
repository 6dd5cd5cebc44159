package repository

import (
	"context"

	"machtrade/internal/model"
	"machtrade/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaintenanceRepository interface {
	List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.MaintenanceJob, int64, error)
	// FindByID is an unscoped unique-key read; callers own EnsureInScope.
	FindByID(ctx context.Context, id uuid.UUID) (*model.MaintenanceJob, error)
	Create(ctx context.Context, j *model.MaintenanceJob) error
	Update(ctx context.Context, j *model.MaintenanceJob) error
	// UpdateStatus moves a job along received -> in_progress -> done. The
	// previous status in the WHERE clause makes concurrent transitions lose
	// cleanly (zero rows affected).
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (int64, error)
}

type maintenanceRepo struct {
	db  *gorm.DB
	enf *scope.Enforcer
}

func NewMaintenanceRepository(db *gorm.DB, enf *scope.Enforcer) MaintenanceRepository {
	return &maintenanceRepo{db: db, enf: enf}
}

func (r *maintenanceRepo) List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.MaintenanceJob, int64, error) {
	q, err := scopedQuery(r.db.WithContext(ctx).Model(&model.MaintenanceJob{}), r.enf, scope.OpReadMany, scope.ResourceMaintenanceJobs, f, sc)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []model.MaintenanceJob
	err = q.Preload("Customer").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&jobs).Error
	return jobs, total, err
}

func (r *maintenanceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.MaintenanceJob, error) {
	var j model.MaintenanceJob
	err := r.db.WithContext(ctx).
		Preload("Customer").
		First(&j, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *maintenanceRepo) Create(ctx context.Context, j *model.MaintenanceJob) error {
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *maintenanceRepo) Update(ctx context.Context, j *model.MaintenanceJob) error {
	return r.db.WithContext(ctx).Save(j).Error
}

func (r *maintenanceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.MaintenanceJob{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}
