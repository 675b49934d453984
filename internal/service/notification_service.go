package service

import (
	"context"

	apperrors "github.com/aditya/go-gigs/internal/errors"
	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/internal/realtime"
	"github.com/aditya/go-gigs/internal/repository"
	"go.uber.org/zap"
)

type NotificationService interface {
	// Notify is best-effort: failures are logged, never returned.
	Notify(ctx context.Context, userID, message, notificationType, relatedID string)
	MarkRead(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID string) ([]*models.Notification, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	publisher        realtime.Publisher
	logger           *zap.Logger
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	publisher realtime.Publisher,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
		logger:           logger,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID, message, notificationType, relatedID string) {
	n := &models.Notification{
		UserID:    userID,
		Message:   message,
		Type:      notificationType,
		RelatedID: relatedID,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error("failed to create notification",
			zap.String("user_id", userID),
			zap.String("type", notificationType),
			zap.Error(err))
		return
	}

	evt, err := realtime.NewEvent(realtime.EventNotification, models.NotificationEvent{
		Message:   message,
		Type:      notificationType,
		RelatedID: relatedID,
	})
	if err != nil {
		s.logger.Error("failed to encode notification event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, userID, evt); err != nil {
		s.logger.Warn("failed to publish notification",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

func (s *notificationService) MarkRead(ctx context.Context, id string) error {
	found, err := s.notificationRepo.MarkRead(ctx, id)
	if err != nil {
		return apperrors.Persistence("mark notification read", err)
	}
	if !found {
		return apperrors.NotFound("notification")
	}
	return nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Persistence("fetch notifications", err)
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	return notifications, nil
}
