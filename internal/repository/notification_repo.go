package repository

import (
	"context"

	"bouw-backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []model.Notification) error
	FindByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db}
}

func (r *notificationRepo) CreateBatch(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&notifications).Error
}

func (r *notificationRepo) FindByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	var notifications []model.Notification
	db := conn(ctx, r.db).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		db = db.Where("status = ?", model.NotificationUnread)
	}
	err := db.Order("created_at DESC").Limit(100).Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	res := conn(ctx, r.db).
		Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("status", model.NotificationRead)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
