package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sparkmetric/citewatch-backend/internal/logger"
	"github.com/sparkmetric/citewatch-backend/internal/repos"
	"github.com/sparkmetric/citewatch-backend/internal/types"
)

type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*types.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type notificationService struct {
	db               *gorm.DB
	log              *logger.Logger
	notificationRepo repos.NotificationRepo
}

func NewNotificationService(db *gorm.DB, baseLog *logger.Logger, notificationRepo repos.NotificationRepo) NotificationService {
	return &notificationService{
		db:               db,
		log:              baseLog.With("service", "NotificationService"),
		notificationRepo: notificationRepo,
	}
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*types.Notification, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("notifications: user id required")
	}
	return s.notificationRepo.GetByUserID(ctx, nil, userID, limit, offset)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("notifications: user id required")
	}
	return s.notificationRepo.UnreadCount(ctx, nil, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil || notificationID == uuid.Nil {
		return fmt.Errorf("notifications: user id and notification id required")
	}
	return s.notificationRepo.MarkRead(ctx, nil, userID, notificationID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return fmt.Errorf("notifications: user id required")
	}
	return s.notificationRepo.MarkAllRead(ctx, nil, userID)
}
