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

type UserPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID with caching
func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var user models.User

	err := u.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		err := u.getDB(tx).WithContext(ctx).First(&dbUser, id).Error
		if err != nil {
			return nil, err
		}
		return &dbUser, nil
	})

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByEmail is used on the login path, always reads through to the database.
func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	db := u.getDB(tx)
	var user models.User
	err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	cache.SafeDelete(ctx, u.cacheManager.User, fmt.Sprintf("id:%d", user.ID))

	return nil
}

func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	cache.SafeDelete(ctx, u.cacheManager.User, fmt.Sprintf("id:%d", id))

	return nil
}

// List retrieves users with filters and pagination
func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := u.getDB(tx).WithContext(ctx).Model(&models.User{})

	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if len(filters.Roles) > 0 {
		query = query.Where("role IN ?", filters.Roles)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Search != "" {
		searchQuery := fmt.Sprintf("%%%s%%", filters.Search)
		query = query.Where("name ILIKE ? OR email ILIKE ?", searchQuery, searchQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = u.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var users []*models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// GetByRoles retrieves all active users whose role matches one of the given roles
func (u *UserPostgreSQL) GetByRoles(ctx context.Context, tx *gorm.DB, roles ...models.UserRole) ([]*models.User, error) {
	db := u.getDB(tx)
	var users []*models.User
	err := db.WithContext(ctx).
		Where("role IN ? AND is_active = ?", roles, true).
		Find(&users).Error

	return users, err
}

func (u *UserPostgreSQL) UpdateRole(ctx context.Context, tx *gorm.DB, id uint, role models.UserRole) error {
	db := u.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"role":       role,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.SafeDelete(ctx, u.cacheManager.User, fmt.Sprintf("id:%d", id))

	return nil
}

func (u *UserPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, isActive bool) error {
	db := u.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  isActive,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.SafeDelete(ctx, u.cacheManager.User, fmt.Sprintf("id:%d", id))

	return nil
}

// AppendQuizTaken pushes a history entry onto the user's embedded quiz history.
// Read-modify-write on the JSONB column, last writer wins.
func (u *UserPostgreSQL) AppendQuizTaken(ctx context.Context, tx *gorm.DB, id uint, entry models.QuizTaken) error {
	db := u.getDB(tx)

	var user models.User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		return fmt.Errorf("failed to get user before history update: %w", err)
	}

	user.QuizzesTaken = append(user.QuizzesTaken, entry)
	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("quizzes_taken", user.QuizzesTaken).Error; err != nil {
		return fmt.Errorf("failed to append quiz history: %w", err)
	}

	cache.SafeDelete(ctx, u.cacheManager.User, fmt.Sprintf("id:%d", id))

	return nil
}

func (u *UserPostgreSQL) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	db := u.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error

	return count > 0, err
}
