package service

import (
	"context"

	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/repository"
	"bouw-backoffice/pkg/apperror"

	"github.com/google/uuid"
)

type NotificationService interface {
	List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	ns, err := s.repo.FindByRecipient(ctx, recipientID, unreadOnly)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return ns, nil
}

// MarkRead only touches notifications addressed to recipientID.
func (s *notificationService) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	return apperror.Store(s.repo.MarkRead(ctx, id, recipientID))
}
