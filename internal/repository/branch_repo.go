package repository

import (
	"context"

	"machtrade/internal/model"
	"machtrade/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BranchRepository interface {
	// List is scoped on the branch's own id, so branch actors only see the
	// branches they are authorized for.
	List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter) ([]model.Branch, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Branch, error)
	Create(ctx context.Context, b *model.Branch) error
	Update(ctx context.Context, b *model.Branch) error
}

type branchRepo struct {
	db  *gorm.DB
	enf *scope.Enforcer
}

func NewBranchRepository(db *gorm.DB, enf *scope.Enforcer) BranchRepository {
	return &branchRepo{db: db, enf: enf}
}

func (r *branchRepo) List(ctx context.Context, sc scope.EffectiveScope, f scope.Filter) ([]model.Branch, error) {
	q, err := scopedQuery(r.db.WithContext(ctx).Model(&model.Branch{}), r.enf, scope.OpReadMany, scope.ResourceBranches, f, sc)
	if err != nil {
		return nil, err
	}

	var branches []model.Branch
	err = q.Order("name ASC").Find(&branches).Error
	return branches, err
}

func (r *branchRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Branch, error) {
	var b model.Branch
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *branchRepo) Create(ctx context.Context, b *model.Branch) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *branchRepo) Update(ctx context.Context, b *model.Branch) error {
	return r.db.WithContext(ctx).Save(b).Error
}
