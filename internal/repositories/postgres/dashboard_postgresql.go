package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== PLATFORM TOTALS =====

func (r *dashboardRepository) GetPlatformTotals(ctx context.Context, tx *gorm.DB) (*repositories.PlatformTotals, error) {
	db := r.getDB(tx)
	totals := &repositories.PlatformTotals{}

	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Count(&totals.Users).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.Quiz{}).
		Count(&totals.Quizzes).Error; err != nil {
		return nil, fmt.Errorf("failed to count quizzes: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.Result{}).
		Count(&totals.Results).Error; err != nil {
		return nil, fmt.Errorf("failed to count results: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.Result{}).
		Where("status = ?", models.ResultCompleted).
		Count(&totals.CompletedResults).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed results: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.Result{}).
		Where("status = ? AND passed", models.ResultCompleted).
		Count(&totals.PassedResults).Error; err != nil {
		return nil, fmt.Errorf("failed to count passed results: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", models.OrderCompleted).
		Row().
		Scan(&totals.Revenue); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return totals, nil
}

// GetCreatorTotals scopes the headline counters to the given quiz IDs
func (r *dashboardRepository) GetCreatorTotals(ctx context.Context, tx *gorm.DB, quizIDs []uint) (*repositories.PlatformTotals, error) {
	totals := &repositories.PlatformTotals{
		Quizzes: int64(len(quizIDs)),
	}
	if len(quizIDs) == 0 {
		return totals, nil
	}

	db := r.getDB(tx)

	if err := db.WithContext(ctx).
		Model(&models.Result{}).
		Where("quiz_id IN ?", quizIDs).
		Count(&totals.Results).Error; err != nil {
		return nil, fmt.Errorf("failed to count results: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.Result{}).
		Where("quiz_id IN ? AND status = ?", quizIDs, models.ResultCompleted).
		Count(&totals.CompletedResults).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed results: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.Result{}).
		Where("quiz_id IN ? AND status = ? AND passed", quizIDs, models.ResultCompleted).
		Count(&totals.PassedResults).Error; err != nil {
		return nil, fmt.Errorf("failed to count passed results: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.Result{}).
		Distinct("user_id").
		Where("quiz_id IN ?", quizIDs).
		Count(&totals.Users).Error; err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	return totals, nil
}

// ===== CHART DATA =====

func (r *dashboardRepository) GetQuizzesByCategory(ctx context.Context, tx *gorm.DB) ([]repositories.CategoryCount, error) {
	db := r.getDB(tx)
	var counts []repositories.CategoryCount

	if err := db.WithContext(ctx).
		Model(&models.Quiz{}).
		Select("category, COUNT(*) as count").
		Where("category != ''").
		Group("category").
		Order("count DESC").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to get quizzes by category: %w", err)
	}

	return counts, nil
}

func (r *dashboardRepository) GetAttemptsByDay(ctx context.Context, tx *gorm.DB, days int) ([]repositories.DailyCount, error) {
	db := r.getDB(tx)
	var counts []repositories.DailyCount

	since := time.Now().AddDate(0, 0, -days)
	if err := db.WithContext(ctx).
		Model(&models.Result{}).
		Select("DATE_TRUNC('day', created_at) as day, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("day").
		Order("day ASC").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to get attempts by day: %w", err)
	}

	return counts, nil
}
