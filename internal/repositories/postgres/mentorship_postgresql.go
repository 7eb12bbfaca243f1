package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/repositories"
)

type MentorshipPostgreSQL struct {
	db *gorm.DB
}

func NewMentorshipPostgreSQL(db *gorm.DB) repositories.MentorshipRepository {
	return &MentorshipPostgreSQL{db: db}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (m *MentorshipPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return m.db
}

func (m *MentorshipPostgreSQL) Create(ctx context.Context, tx *gorm.DB, video *models.MentorshipVideo) error {
	db := m.getDB(tx)
	if err := db.WithContext(ctx).Create(video).Error; err != nil {
		return fmt.Errorf("failed to create mentorship video: %w", err)
	}
	return nil
}

func (m *MentorshipPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.MentorshipVideo, error) {
	db := m.getDB(tx)
	var video models.MentorshipVideo
	if err := db.WithContext(ctx).First(&video, id).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

func (m *MentorshipPostgreSQL) Update(ctx context.Context, tx *gorm.DB, video *models.MentorshipVideo) error {
	db := m.getDB(tx)
	if err := db.WithContext(ctx).Save(video).Error; err != nil {
		return fmt.Errorf("failed to update mentorship video: %w", err)
	}
	return nil
}

func (m *MentorshipPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := m.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.MentorshipVideo{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete mentorship video: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (m *MentorshipPostgreSQL) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.MentorshipVideo, int64, error) {
	db := m.getDB(tx)

	var total int64
	if err := db.WithContext(ctx).Model(&models.MentorshipVideo{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var videos []*models.MentorshipVideo
	if err := query.Find(&videos).Error; err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

// IncrementViews bumps the view counter atomically in the database
func (m *MentorshipPostgreSQL) IncrementViews(ctx context.Context, tx *gorm.DB, id uint) error {
	db := m.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.MentorshipVideo{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
