package repository

import (
	"context"

	"machtrade/internal/model"
	"machtrade/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.Customer, int64, error)
	// FindByID is an unscoped unique-key read: callers own the EnsureInScope check.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	Create(ctx context.Context, c *model.Customer) error
	Update(ctx context.Context, c *model.Customer) error
	DB() *gorm.DB
}

type customerRepo struct {
	db  *gorm.DB
	enf *scope.Enforcer
}

func NewCustomerRepository(db *gorm.DB, enf *scope.Enforcer) CustomerRepository {
	return &customerRepo{db: db, enf: enf}
}

func (r *customerRepo) DB() *gorm.DB { return r.db }

func (r *customerRepo) List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter, page, limit int) ([]model.Customer, int64, error) {
	q, err := scopedQuery(r.db.WithContext(ctx).Model(&model.Customer{}), r.enf, scope.OpReadMany, scope.ResourceCustomers, f, sc)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []model.Customer
	err = q.Order("name ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&customers).Error
	return customers, total, err
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}
