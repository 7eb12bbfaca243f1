package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/cache"
	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/repositories"
)

type QuizPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuizPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuizRepository {
	return &QuizPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (q *QuizPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

// Create creates a new quiz and invalidates list caches
func (q *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, q.cacheManager.Quiz, fmt.Sprintf("creator:%d:*", quiz.CreatedBy))
	cache.SafeInvalidatePattern(ctx, q.cacheManager.Quiz, "list:*")
	cache.SafeInvalidatePattern(ctx, q.cacheManager.Quiz, "featured:*")

	return nil
}

// GetByID retrieves a quiz by ID with caching
func (q *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var quiz models.Quiz

	err := q.cacheManager.Quiz.CacheOrExecute(ctx, cacheKey, &quiz, cache.QuizCacheConfig.TTL, func() (interface{}, error) {
		var dbQuiz models.Quiz
		err := q.getDB(tx).WithContext(ctx).
			Preload("Creator").
			First(&dbQuiz, id).Error
		if err != nil {
			return nil, err
		}
		return &dbQuiz, nil
	})

	if err != nil {
		return nil, err
	}

	return &quiz, nil
}

// Update persists the full quiz row and invalidates related caches
func (q *QuizPostgreSQL) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := q.getDB(tx)
	quiz.UpdatedAt = time.Now()

	if err := db.WithContext(ctx).Save(quiz).Error; err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}

	cache.InvalidateQuizCache(ctx, q.cacheManager, quiz.ID, quiz.CreatedBy)

	return nil
}

// Delete hard deletes a quiz
func (q *QuizPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := q.getDB(tx)

	// Fetch creator first for cache invalidation
	var quiz models.Quiz
	if err := db.WithContext(ctx).Select("id, created_by").First(&quiz, id).Error; err != nil {
		return fmt.Errorf("failed to get quiz before delete: %w", err)
	}

	if err := db.WithContext(ctx).Delete(&models.Quiz{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	cache.InvalidateQuizCache(ctx, q.cacheManager, id, quiz.CreatedBy)
	cache.SafeInvalidatePattern(ctx, q.cacheManager.Leaderboard, fmt.Sprintf("quiz:%d*", id))

	return nil
}

// List retrieves quizzes with filters and pagination
func (q *QuizPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	query := q.getDB(tx).WithContext(ctx).Model(&models.Quiz{})

	query = q.helpers.ApplyQuizFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var quizzes []*models.Quiz
	if err := query.Preload("Creator").Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}

	return quizzes, total, nil
}

// GetByTypes retrieves quizzes matching any of the given types, newest first
func (q *QuizPostgreSQL) GetByTypes(ctx context.Context, tx *gorm.DB, types []models.QuizType, limit int) ([]*models.Quiz, error) {
	db := q.getDB(tx)
	var quizzes []*models.Quiz

	query := db.WithContext(ctx).
		Where("quiz_type IN ?", types).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&quizzes).Error
	return quizzes, err
}

func (q *QuizPostgreSQL) GetByCategory(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*models.Quiz, error) {
	db := q.getDB(tx)
	var quizzes []*models.Quiz

	query := db.WithContext(ctx).
		Where("category = ?", category).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&quizzes).Error
	return quizzes, err
}

// GetRegisteredByUser returns quizzes whose embedded participant list
// contains the user, via a JSONB containment query.
func (q *QuizPostgreSQL) GetRegisteredByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Quiz, error) {
	db := q.getDB(tx)
	var quizzes []*models.Quiz

	containment := fmt.Sprintf(`[{"user_id": %d}]`, userID)
	err := db.WithContext(ctx).
		Where("participants @> ?", containment).
		Order("created_at DESC").
		Find(&quizzes).Error

	return quizzes, err
}

// CountByCategory groups quizzes per category for the catalog landing page
func (q *QuizPostgreSQL) CountByCategory(ctx context.Context, tx *gorm.DB) ([]repositories.CategoryCount, error) {
	db := q.getDB(tx)
	var counts []repositories.CategoryCount

	err := db.WithContext(ctx).
		Model(&models.Quiz{}).
		Select("category, COUNT(*) as count").
		Where("category != ''").
		Group("category").
		Order("count DESC").
		Scan(&counts).Error

	return counts, err
}

func (q *QuizPostgreSQL) GetIDsByCreator(ctx context.Context, tx *gorm.DB, creatorID uint) ([]uint, error) {
	db := q.getDB(tx)
	var ids []uint

	err := db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("created_by = ?", creatorID).
		Pluck("id", &ids).Error

	return ids, err
}
