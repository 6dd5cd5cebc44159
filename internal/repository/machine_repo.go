package repository

import (
	"context"

	"machtrade/internal/model"
	"machtrade/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MachineRepository interface {
	List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.Machine, int64, error)
	// FindBySerial is an unscoped unique-key read (escape hatch): callers must
	// run scope.EnsureInScope on the result before using it.
	FindBySerial(ctx context.Context, serial string) (*model.Machine, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Machine, error)
	Create(ctx context.Context, m *model.Machine) error
	Update(ctx context.Context, m *model.Machine) error
	// UpdateStatusTx flips machine status from→to by primary key. Unique-key
	// write: scope must already be verified via EnsureInScope.
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) (int64, error)
	DB() *gorm.DB
}

type machineRepo struct {
	db  *gorm.DB
	enf *scope.Enforcer
}

func NewMachineRepository(db *gorm.DB, enf *scope.Enforcer) MachineRepository {
	return &machineRepo{db: db, enf: enf}
}

func (r *machineRepo) DB() *gorm.DB { return r.db }

func (r *machineRepo) List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.Machine, int64, error) {
	q, err := scopedQuery(r.db.WithContext(ctx).Model(&model.Machine{}), r.enf, scope.OpReadMany, scope.ResourceMachines, f, sc)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var machines []model.Machine
	err = q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&machines).Error
	return machines, total, err
}

func (r *machineRepo) FindBySerial(ctx context.Context, serial string) (*model.Machine, error) {
	var m model.Machine
	err := r.db.WithContext(ctx).Where("serial_number = ?", serial).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *machineRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Machine, error) {
	var m model.Machine
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *machineRepo) Create(ctx context.Context, m *model.Machine) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *machineRepo) Update(ctx context.Context, m *model.Machine) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *machineRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) (int64, error) {
	// Status guard doubles as an optimistic lock: a concurrent sale of the
	// same unit sees zero rows affected instead of silently double-selling.
	res := tx.Model(&model.Machine{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}
