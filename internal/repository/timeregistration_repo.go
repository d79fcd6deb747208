package repository

import (
	"context"
	"time"

	"bouw-backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TimeRegistrationRepository interface {
	CreateBatch(ctx context.Context, rows []model.TimeRegistration) error
	FindByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.TimeRegistration, error)
}

type timeRegistrationRepo struct {
	db *gorm.DB
}

func NewTimeRegistrationRepo(db *gorm.DB) TimeRegistrationRepository {
	return &timeRegistrationRepo{db}
}

func (r *timeRegistrationRepo) CreateBatch(ctx context.Context, rows []model.TimeRegistration) error {
	if len(rows) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&rows).Error
}

func (r *timeRegistrationRepo) FindByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.TimeRegistration, error) {
	var rows []model.TimeRegistration
	err := conn(ctx, r.db).
		Preload("Project").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, from, to).
		Order("date DESC, created_at ASC").
		Find(&rows).Error
	return rows, err
}
