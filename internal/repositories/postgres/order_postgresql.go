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

type OrderPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewOrderPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.OrderRepository {
	return &OrderPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (o *OrderPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return o.db
}

func (o *OrderPostgreSQL) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	db := o.getDB(tx)
	if err := db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByOrderID looks up an order by its public ORD_ identifier.
// Payment verification reads this row, so it always hits the database.
func (o *OrderPostgreSQL) GetByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*models.Order, error) {
	db := o.getDB(tx)
	var order models.Order
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (o *OrderPostgreSQL) Update(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	db := o.getDB(tx)
	order.UpdatedAt = time.Now()

	if err := db.WithContext(ctx).Save(order).Error; err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, o.cacheManager.Stats, "revenue*")

	return nil
}

// List retrieves orders with filters and pagination
func (o *OrderPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.OrderFilters) ([]*models.Order, int64, error) {
	query := o.getDB(tx).WithContext(ctx).Model(&models.Order{})

	query = o.helpers.ApplyOrderFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = o.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var orders []*models.Order
	if err := query.Preload("User").Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// HasCompletedQuizOrder reports whether the user already has a completed
// order whose embedded item points at the quiz.
func (o *OrderPostgreSQL) HasCompletedQuizOrder(ctx context.Context, tx *gorm.DB, userID, quizID uint) (bool, error) {
	db := o.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ? AND status = ? AND item->>'item_id' = ?",
			userID, models.OrderCompleted, fmt.Sprintf("%d", quizID)).
		Count(&count).Error

	return count > 0, err
}

// SumCompletedAmount totals revenue across completed orders
func (o *OrderPostgreSQL) SumCompletedAmount(ctx context.Context, tx *gorm.DB) (float64, error) {
	db := o.getDB(tx)
	var total float64
	err := db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", models.OrderCompleted).
		Row().
		Scan(&total)

	return total, err
}
