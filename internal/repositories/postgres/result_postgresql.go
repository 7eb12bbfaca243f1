package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/cache"
	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/repositories"
)

type ResultPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewResultPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ResultRepository {
	return &ResultPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (r *ResultPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create stores a graded submission and invalidates leaderboard caches
func (r *ResultPostgreSQL) Create(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to create result: %w", err)
	}

	cache.InvalidateResultCache(ctx, r.cacheManager, result.QuizID, result.UserID)

	return nil
}

func (r *ResultPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error) {
	db := r.getDB(tx)
	var result models.Result
	err := db.WithContext(ctx).
		Preload("User").
		Preload("Quiz").
		First(&result, id).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByUserAndQuiz is the duplicate-submission check, reads through to the database
func (r *ResultPostgreSQL) GetByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uint) (*models.Result, error) {
	db := r.getDB(tx)
	var result models.Result
	err := db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// List retrieves results with filters and pagination
func (r *ResultPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.Result{})

	query = r.helpers.ApplyResultFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var results []*models.Result
	if err := query.Preload("User").Preload("Quiz").Find(&results).Error; err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// Leaderboard returns completed results ordered by score desc and time
// taken asc, cached for a short window since it churns per submission.
func (r *ResultPostgreSQL) Leaderboard(ctx context.Context, tx *gorm.DB, quizID uint, limit int) ([]*models.Result, error) {
	cacheKey := fmt.Sprintf("quiz:%d:limit:%d", quizID, limit)
	var results []*models.Result

	err := r.cacheManager.Leaderboard.CacheOrExecute(ctx, cacheKey, &results, cache.LeaderboardCacheConfig.TTL, func() (interface{}, error) {
		var dbResults []*models.Result
		query := r.getDB(tx).WithContext(ctx).
			Where("quiz_id = ? AND status = ?", quizID, models.ResultCompleted).
			Preload("User").
			Order("score DESC, time_taken ASC")
		if limit > 0 {
			query = query.Limit(limit)
		}
		if err := query.Find(&dbResults).Error; err != nil {
			return nil, err
		}
		return dbResults, nil
	})

	if err != nil {
		return nil, err
	}

	return results, nil
}

// GetQuizStats aggregates completed results for a quiz with caching
func (r *ResultPostgreSQL) GetQuizStats(ctx context.Context, tx *gorm.DB, quizID uint) (*repositories.QuizResultStats, error) {
	cacheKey := fmt.Sprintf("quiz:%d:results", quizID)
	var stats repositories.QuizResultStats

	err := r.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		db := r.getDB(tx)
		dbStats := &repositories.QuizResultStats{}

		attempts, err := r.helpers.CountResults(ctx, quizID)
		if err != nil {
			return nil, err
		}
		completed, err := r.helpers.CountResultsByStatus(ctx, quizID, models.ResultCompleted)
		if err != nil {
			return nil, err
		}

		var avgPct float64
		var passed int64
		if completed > 0 {
			db.WithContext(ctx).
				Model(&models.Result{}).
				Select("AVG(CASE WHEN total_questions > 0 THEN score * 100.0 / total_questions ELSE 0 END), SUM(CASE WHEN passed THEN 1 ELSE 0 END)").
				Where("quiz_id = ? AND status = ?", quizID, models.ResultCompleted).
				Row().
				Scan(&avgPct, &passed)
		}

		dbStats.Attempts = attempts
		dbStats.Completed = completed
		dbStats.AveragePercentage = avgPct
		if completed > 0 {
			dbStats.PassRate = float64(passed) / float64(completed) * 100
		}

		return dbStats, nil
	})

	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetUserStats aggregates a user's completed results
func (r *ResultPostgreSQL) GetUserStats(ctx context.Context, tx *gorm.DB, userID uint) (*repositories.UserResultStats, error) {
	db := r.getDB(tx)
	stats := &repositories.UserResultStats{}

	var total int64
	if err := db.WithContext(ctx).
		Model(&models.Result{}).
		Where("user_id = ? AND status = ?", userID, models.ResultCompleted).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var avgScore float64
	var passed int64
	if total > 0 {
		db.WithContext(ctx).
			Model(&models.Result{}).
			Select("AVG(score), SUM(CASE WHEN passed THEN 1 ELSE 0 END)").
			Where("user_id = ? AND status = ?", userID, models.ResultCompleted).
			Row().
			Scan(&avgScore, &passed)
	}

	stats.TotalAttempts = total
	stats.AverageScore = avgScore
	stats.PassedCount = passed
	if total > 0 {
		stats.PassRate = float64(passed) / float64(total) * 100
	}

	return stats, nil
}
