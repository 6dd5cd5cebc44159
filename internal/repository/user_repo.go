package repository

import (
	"context"

	"machtrade/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository is not branch-scoped: users are authentication data, not
// business records, and only the auth/admin paths touch them.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	ReplaceBranches(ctx context.Context, u *model.User, branches []model.Branch) error
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Preload("Branches").
		First(&u, "username = ?", username).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Preload("Branches").
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepo) ReplaceBranches(ctx context.Context, u *model.User, branches []model.Branch) error {
	return r.db.WithContext(ctx).Model(u).Association("Branches").Replace(branches)
}

func (r *userRepo) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := r.db.WithContext(ctx).
		Preload("Branches").
		Order("username ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&users).Error
	return users, total, err
}
