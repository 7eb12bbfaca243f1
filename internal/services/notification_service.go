package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/events"
	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/repositories"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

type notificationService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewNotificationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) NotificationService {
	return &notificationService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// Send materializes a broadcast as one notification row per recipient
func (s *notificationService) Send(ctx context.Context, senderID uint, req *SendNotificationRequest) (*SendNotificationResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	recipients, err := s.resolveRecipients(ctx, models.RecipientGroup(req.Recipient))
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, ErrUserNotFound
	}

	notifications := make([]*models.Notification, len(recipients))
	for i, user := range recipients {
		notifications[i] = &models.Notification{
			UserID:  user.ID,
			Subject: req.Subject,
			Message: req.Message,
		}
	}

	if err := s.repo.Notification().CreateBatch(ctx, nil, notifications); err != nil {
		return nil, fmt.Errorf("failed to store notifications: %w", err)
	}

	event := events.NewEvent(events.EventNotificationBulkSent, events.BulkNotificationEvent{
		Subject:        req.Subject,
		Recipient:      req.Recipient,
		RecipientCount: len(recipients),
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish notification event", "error", err)
	}

	s.logger.Info("Notifications sent", "sender_id", senderID, "recipient", req.Recipient, "count", len(recipients))

	return &SendNotificationResponse{RecipientCount: len(recipients)}, nil
}

func (s *notificationService) resolveRecipients(ctx context.Context, group models.RecipientGroup) ([]*models.User, error) {
	var roles []models.UserRole
	switch group {
	case models.RecipientUsers:
		roles = []models.UserRole{models.RoleUser}
	case models.RecipientAdmins:
		roles = []models.UserRole{models.RoleAdmin, models.RoleSuperAdmin}
	default:
		roles = []models.UserRole{models.RoleUser, models.RoleAdmin, models.RoleSuperAdmin}
	}

	users, err := s.repo.User().GetByRoles(ctx, nil, roles...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}
	return users, nil
}

func (s *notificationService) GetUserNotifications(ctx context.Context, userID uint, limit int) ([]*models.Notification, error) {
	notifications, err := s.repo.Notification().ListByUser(ctx, nil, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead updates only the caller's notifications; ids the caller does
// not own are silently ignored.
func (s *notificationService) MarkRead(ctx context.Context, userID uint, req *MarkNotificationsReadRequest) (int64, error) {
	if err := s.validator.Validate(req); err != nil {
		return 0, err
	}

	updated, err := s.repo.Notification().MarkRead(ctx, nil, userID, req.NotificationIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	if updated == 0 {
		return 0, ErrNotificationNotFound
	}

	return updated, nil
}
