package repository

import (
	"context"

	"bouw-backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkCodeRepository interface {
	FindActive(ctx context.Context) ([]model.WorkCode, error)
	FindAll(ctx context.Context) ([]model.WorkCode, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.WorkCode, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.WorkCode, error)
	Create(ctx context.Context, code *model.WorkCode) error
	Update(ctx context.Context, code *model.WorkCode) error
}

type workCodeRepo struct {
	db *gorm.DB
}

func NewWorkCodeRepo(db *gorm.DB) WorkCodeRepository {
	return &workCodeRepo{db}
}

func (r *workCodeRepo) FindActive(ctx context.Context) ([]model.WorkCode, error) {
	var codes []model.WorkCode
	err := conn(ctx, r.db).Where("active = ?", true).Order("sort_order ASC, code ASC").Find(&codes).Error
	return codes, err
}

func (r *workCodeRepo) FindAll(ctx context.Context) ([]model.WorkCode, error) {
	var codes []model.WorkCode
	err := conn(ctx, r.db).Order("sort_order ASC, code ASC").Find(&codes).Error
	return codes, err
}

func (r *workCodeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.WorkCode, error) {
	var code model.WorkCode
	if err := conn(ctx, r.db).First(&code, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *workCodeRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.WorkCode, error) {
	var codes []model.WorkCode
	if len(ids) == 0 {
		return codes, nil
	}
	err := conn(ctx, r.db).Where("id IN ?", ids).Find(&codes).Error
	return codes, err
}

func (r *workCodeRepo) Create(ctx context.Context, code *model.WorkCode) error {
	return conn(ctx, r.db).Create(code).Error
}

func (r *workCodeRepo) Update(ctx context.Context, code *model.WorkCode) error {
	return conn(ctx, r.db).Save(code).Error
}
