package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role      *models.UserRole `json:"role"`
	Roles     []models.UserRole `json:"roles"`
	IsActive  *bool            `json:"is_active"`
	Search    string           `json:"search"` // matches name or email
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`    // "created_at", "name", "email"
	SortOrder string           `json:"sort_order"` // "asc", "desc"
}

type QuizFilters struct {
	Category  *string            `json:"category"`
	QuizType  *models.QuizType   `json:"quiz_type"`
	QuizTypes []models.QuizType  `json:"quiz_types"`
	Status    *models.QuizStatus `json:"status"`
	CreatedBy *uint              `json:"created_by"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`
	SortOrder string             `json:"sort_order"`
}

type OrderFilters struct {
	UserID    *uint               `json:"user_id"`
	Status    *models.OrderStatus `json:"status"`
	DateFrom  *time.Time          `json:"date_from"`
	DateTo    *time.Time          `json:"date_to"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
	SortBy    string              `json:"sort_by"`
	SortOrder string              `json:"sort_order"`
}

type ResultFilters struct {
	UserID    *uint                `json:"user_id"`
	QuizID    *uint                `json:"quiz_id"`
	QuizIDs   []uint               `json:"quiz_ids"`
	Status    *models.ResultStatus `json:"status"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`
	SortOrder string               `json:"sort_order"`
}

// ===== SHARED STATISTICS STRUCTS =====

// QuizResultStats aggregates completed results for one quiz.
type QuizResultStats struct {
	Attempts          int64   `json:"attempts"`
	Completed         int64   `json:"completed"`
	AveragePercentage float64 `json:"average_percentage"`
	PassRate          float64 `json:"pass_rate"`
}

// UserResultStats aggregates a user's completed results.
type UserResultStats struct {
	TotalAttempts int64   `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
	PassedCount   int64   `json:"passed_count"`
	PassRate      float64 `json:"pass_rate"`
}

// CategoryCount is one bar of the per-category chart.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// DailyCount is one point of an attempts-over-time series.
type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// PlatformTotals holds the headline dashboard counters.
type PlatformTotals struct {
	Users            int64   `json:"users"`
	Quizzes          int64   `json:"quizzes"`
	Results          int64   `json:"results"`
	CompletedResults int64   `json:"completed_results"`
	PassedResults    int64   `json:"passed_results"`
	Revenue          float64 `json:"revenue"`
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	GetByRoles(ctx context.Context, tx *gorm.DB, roles ...models.UserRole) ([]*models.User, error)

	UpdateRole(ctx context.Context, tx *gorm.DB, id uint, role models.UserRole) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, isActive bool) error

	// AppendQuizTaken pushes one history entry onto the user's embedded
	// quiz history (read-modify-write, last writer wins).
	AppendQuizTaken(ctx context.Context, tx *gorm.DB, id uint, entry models.QuizTaken) error

	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type QuizRepository interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters QuizFilters) ([]*models.Quiz, int64, error)
	GetByTypes(ctx context.Context, tx *gorm.DB, types []models.QuizType, limit int) ([]*models.Quiz, error)
	GetByCategory(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*models.Quiz, error)

	// GetRegisteredByUser returns quizzes whose participants list contains
	// the user (JSONB containment query).
	GetRegisteredByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Quiz, error)

	CountByCategory(ctx context.Context, tx *gorm.DB) ([]CategoryCount, error)
	GetIDsByCreator(ctx context.Context, tx *gorm.DB, creatorID uint) ([]uint, error)
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *models.Order) error
	GetByOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*models.Order, error)
	Update(ctx context.Context, tx *gorm.DB, order *models.Order) error

	List(ctx context.Context, tx *gorm.DB, filters OrderFilters) ([]*models.Order, int64, error)

	// HasCompletedQuizOrder reports whether the user already paid for the quiz.
	HasCompletedQuizOrder(ctx context.Context, tx *gorm.DB, userID, quizID uint) (bool, error)

	SumCompletedAmount(ctx context.Context, tx *gorm.DB) (float64, error)
}

type ResultRepository interface {
	Create(ctx context.Context, tx *gorm.DB, result *models.Result) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error)
	GetByUserAndQuiz(ctx context.Context, tx *gorm.DB, userID, quizID uint) (*models.Result, error)

	List(ctx context.Context, tx *gorm.DB, filters ResultFilters) ([]*models.Result, int64, error)

	// Leaderboard returns completed results ordered by score desc then
	// time taken asc, with the user relation loaded.
	Leaderboard(ctx context.Context, tx *gorm.DB, quizID uint, limit int) ([]*models.Result, error)

	GetQuizStats(ctx context.Context, tx *gorm.DB, quizID uint) (*QuizResultStats, error)
	GetUserStats(ctx context.Context, tx *gorm.DB, userID uint) (*UserResultStats, error)
}

type NotificationRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, notifications []*models.Notification) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*models.Notification, error)

	// MarkRead flips is_read for the caller's notifications only and
	// returns the number of rows touched.
	MarkRead(ctx context.Context, tx *gorm.DB, userID uint, ids []uint) (int64, error)
}

type MentorshipRepository interface {
	Create(ctx context.Context, tx *gorm.DB, video *models.MentorshipVideo) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.MentorshipVideo, error)
	Update(ctx context.Context, tx *gorm.DB, video *models.MentorshipVideo) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.MentorshipVideo, int64, error)

	// IncrementViews bumps the view counter atomically.
	IncrementViews(ctx context.Context, tx *gorm.DB, id uint) error
}

type DashboardRepository interface {
	GetPlatformTotals(ctx context.Context, tx *gorm.DB) (*PlatformTotals, error)
	GetCreatorTotals(ctx context.Context, tx *gorm.DB, quizIDs []uint) (*PlatformTotals, error)
	GetQuizzesByCategory(ctx context.Context, tx *gorm.DB) ([]CategoryCount, error)
	GetAttemptsByDay(ctx context.Context, tx *gorm.DB, days int) ([]DailyCount, error)
}

// IsNotFoundError reports whether the error is a gorm record-not-found.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
