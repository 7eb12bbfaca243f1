package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/repositories"
)

type NotificationPostgreSQL struct {
	db *gorm.DB
}

func NewNotificationPostgreSQL(db *gorm.DB) repositories.NotificationRepository {
	return &NotificationPostgreSQL{db: db}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (n *NotificationPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return n.db
}

// CreateBatch inserts one notification row per recipient in a single statement
func (n *NotificationPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	db := n.getDB(tx)
	if err := db.WithContext(ctx).CreateInBatches(notifications, 500).Error; err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

func (n *NotificationPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*models.Notification, error) {
	db := n.getDB(tx)
	var notifications []*models.Notification

	query := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&notifications).Error
	return notifications, err
}

// MarkRead flips is_read for the user's own notifications only
func (n *NotificationPostgreSQL) MarkRead(ctx context.Context, tx *gorm.DB, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	db := n.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Update("is_read", true)

	return result.RowsAffected, result.Error
}
