package repository

import (
	"context"

	"bouw-backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LocationRepository interface {
	Create(ctx context.Context, location *model.Location) error
	FindAll(ctx context.Context) ([]model.Location, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
	Update(ctx context.Context, location *model.Location) error
}

type locationRepo struct {
	db *gorm.DB
}

func NewLocationRepo(db *gorm.DB) LocationRepository {
	return &locationRepo{db}
}

func (r *locationRepo) Create(ctx context.Context, location *model.Location) error {
	return conn(ctx, r.db).Create(location).Error
}

func (r *locationRepo) FindAll(ctx context.Context) ([]model.Location, error) {
	var locations []model.Location
	err := conn(ctx, r.db).Order("type ASC, name ASC").Find(&locations).Error
	return locations, err
}

func (r *locationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	var location model.Location
	if err := conn(ctx, r.db).First(&location, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *locationRepo) Update(ctx context.Context, location *model.Location) error {
	return conn(ctx, r.db).Save(location).Error
}
