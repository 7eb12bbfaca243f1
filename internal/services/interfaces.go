package services

import (
	"context"
	"time"

	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/utils"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type RegisterRequest = validator.RegisterRequest
type VerifyOTPRequest = validator.VerifyOTPRequest
type ResendOTPRequest = validator.ResendOTPRequest
type LoginRequest = validator.LoginRequest
type ChangePasswordRequest = validator.ChangePasswordRequest
type UpdateProfileRequest = validator.UpdateProfileRequest
type AdminUpdateUserRequest = validator.AdminUpdateUserRequest
type UpdateRoleRequest = validator.UpdateRoleRequest
type UpdateUserStatusRequest = validator.UpdateUserStatusRequest
type QuizCreateRequest = validator.QuizCreateRequest
type QuizUpdateRequest = validator.QuizUpdateRequest
type CreateOrderRequest = validator.CreateOrderRequest
type VerifyPaymentRequest = validator.VerifyPaymentRequest
type UpdateOrderStatusRequest = validator.UpdateOrderStatusRequest
type SubmitResultRequest = validator.SubmitResultRequest
type AnswerSubmission = validator.AnswerSubmission
type SendNotificationRequest = validator.SendNotificationRequest
type MarkNotificationsReadRequest = validator.MarkNotificationsReadRequest
type VideoCreateRequest = validator.VideoCreateRequest
type VideoUpdateRequest = validator.VideoUpdateRequest

// ===== AUTH DTOs =====

type RegisterResponse struct {
	UserID uint `json:"user_id"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ===== USER DTOs =====

type UserListResponse struct {
	Users      []*models.User    `json:"users"`
	Pagination *utils.Pagination `json:"pagination"`
}

type UserStatsResponse struct {
	QuizzesTaken  int     `json:"quizzes_taken"`
	TotalAttempts int64   `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
	PassedCount   int64   `json:"passed_count"`
	PassRate      float64 `json:"pass_rate"`
}

// ===== QUIZ DTOs =====

type QuizResponse struct {
	*models.Quiz
	CanEdit bool `json:"can_edit"`
}

type QuizListResponse struct {
	Quizzes    []*models.Quiz    `json:"quizzes"`
	Pagination *utils.Pagination `json:"pagination,omitempty"`
}

// FeaturedQuizzesResponse is the catalog view served to regular users
type FeaturedQuizzesResponse struct {
	Featured   map[string][]*models.Quiz `json:"featured"`
	Categories map[string][]*models.Quiz `json:"categories"`
}

type QuizStatsResponse struct {
	QuizID            uint    `json:"quiz_id"`
	Attempts          int64   `json:"attempts"`
	Completed         int64   `json:"completed"`
	AveragePercentage float64 `json:"average_percentage"`
	PassRate          float64 `json:"pass_rate"`
	RegisteredUsers   int     `json:"registered_users"`
}

// ===== PAYMENT DTOs =====

type CreateOrderResponse struct {
	Order          *models.Order `json:"order"`
	GatewayOrderID string        `json:"razorpay_order_id"`
	Amount         int64         `json:"amount"`
	Currency       string        `json:"currency"`
	GatewayKeyID   string        `json:"key_id"`
}

type VerifyPaymentResponse struct {
	OrderID string             `json:"order_id"`
	Status  models.OrderStatus `json:"status"`
}

type OrderListResponse struct {
	Orders     []*models.Order   `json:"orders"`
	Pagination *utils.Pagination `json:"pagination"`
}

// ===== RESULT DTOs =====

type SubmitResultResponse struct {
	ResultID       uint `json:"result_id"`
	Score          int  `json:"score"`
	TotalQuestions int  `json:"total_questions"`
	CorrectAnswers int  `json:"correct_answers"`
	Percentage     int  `json:"percentage"`
	Passed         bool `json:"passed"`
	TimeTaken      int  `json:"time_taken"`
}

type ResultListResponse struct {
	Results    []*models.Result  `json:"results"`
	Pagination *utils.Pagination `json:"pagination"`
}

type LeaderboardEntry struct {
	Rank        int              `json:"rank"`
	User        *LeaderboardUser `json:"user"`
	Score       int              `json:"score"`
	Percentage  float64          `json:"percentage"`
	TimeTaken   int              `json:"time_taken"`
	CompletedAt time.Time        `json:"completed_at"`
}

type LeaderboardUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LeaderboardResponse struct {
	QuizID  uint                `json:"quiz_id"`
	Entries []*LeaderboardEntry `json:"entries"`
}

// ===== NOTIFICATION DTOs =====

type SendNotificationResponse struct {
	RecipientCount int `json:"recipient_count"`
}

// ===== ANALYTICS DTOs =====

type DashboardKPIs struct {
	TotalUsers     int64   `json:"total_users"`
	TotalQuizzes   int64   `json:"total_quizzes"`
	TotalAttempts  int64   `json:"total_attempts"`
	CompletionRate float64 `json:"completion_rate"`
	PassRate       float64 `json:"pass_rate"`
	Revenue        float64 `json:"revenue"`
}

type ChartData struct {
	QuizzesByCategory []CategoryChartPoint `json:"quizzes_by_category"`
	AttemptsByDay     []DailyChartPoint    `json:"attempts_by_day"`
}

type CategoryChartPoint struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type DailyChartPoint struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error)
	VerifyOTP(ctx context.Context, req *VerifyOTPRequest) (*AuthResponse, error)
	ResendOTP(ctx context.Context, req *ResendOTPRequest) error
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	ChangePassword(ctx context.Context, userID uint, req *ChangePasswordRequest) error
}

type UserService interface {
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*models.User, error)

	List(ctx context.Context, page, limit int, search string) (*UserListResponse, error)
	ListAdmins(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	AdminUpdate(ctx context.Context, callerID uint, callerRole models.UserRole, targetID uint, req *AdminUpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, callerID, targetID uint) error
	UpdateRole(ctx context.Context, callerID uint, req *UpdateRoleRequest) error
	UpdateStatus(ctx context.Context, callerID uint, req *UpdateUserStatusRequest) error

	GetStats(ctx context.Context, userID uint) (*UserStatsResponse, error)
}

type QuizService interface {
	Create(ctx context.Context, creatorID uint, req *QuizCreateRequest) (*models.Quiz, error)
	GetByID(ctx context.Context, id uint, role models.UserRole) (*models.Quiz, error)
	Update(ctx context.Context, callerID uint, callerRole models.UserRole, id uint, req *QuizUpdateRequest) (*models.Quiz, error)
	Delete(ctx context.Context, callerID uint, callerRole models.UserRole, id uint) error

	ListAll(ctx context.Context, role models.UserRole, page, limit int) (*QuizListResponse, error)
	GetFeatured(ctx context.Context) (*FeaturedQuizzesResponse, error)
	GetCategories(ctx context.Context) ([]CategoryChartPoint, error)
	GetByCreator(ctx context.Context, creatorID uint, page, limit int) (*QuizListResponse, error)
	GetRegistered(ctx context.Context, userID uint) ([]*models.Quiz, error)

	GetStats(ctx context.Context, id uint) (*QuizStatsResponse, error)
}

type PaymentService interface {
	CreateOrder(ctx context.Context, userID uint, req *CreateOrderRequest) (*CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, userID uint, req *VerifyPaymentRequest) (*VerifyPaymentResponse, error)
	GetKey(ctx context.Context) (string, error)

	GetUserOrders(ctx context.Context, userID uint, page, limit int) (*OrderListResponse, error)
	GetOrder(ctx context.Context, userID uint, orderID string) (*models.Order, error)

	ListOrders(ctx context.Context, status *models.OrderStatus, page, limit int) (*OrderListResponse, error)
	UpdateOrderStatus(ctx context.Context, orderID string, req *UpdateOrderStatusRequest) (*models.Order, error)
}

type ResultService interface {
	Submit(ctx context.Context, userID uint, req *SubmitResultRequest) (*SubmitResultResponse, error)
	GetByID(ctx context.Context, callerID uint, callerRole models.UserRole, id uint) (*models.Result, error)

	GetUserResults(ctx context.Context, userID uint, page, limit int) (*ResultListResponse, error)
	GetQuizResults(ctx context.Context, quizID uint, page, limit int) (*ResultListResponse, error)
	GetLeaderboard(ctx context.Context, quizID uint, limit int) (*LeaderboardResponse, error)

	GetAdminResults(ctx context.Context, callerID uint, callerRole models.UserRole, page, limit int) (*ResultListResponse, error)
	ExportAdminResults(ctx context.Context, callerID uint, callerRole models.UserRole) ([]byte, error)
}

type NotificationService interface {
	Send(ctx context.Context, senderID uint, req *SendNotificationRequest) (*SendNotificationResponse, error)
	GetUserNotifications(ctx context.Context, userID uint, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID uint, req *MarkNotificationsReadRequest) (int64, error)
}

type MentorshipService interface {
	Create(ctx context.Context, creatorID uint, req *VideoCreateRequest) (*models.MentorshipVideo, error)
	GetByID(ctx context.Context, id uint) (*models.MentorshipVideo, error)
	Update(ctx context.Context, id uint, req *VideoUpdateRequest) (*models.MentorshipVideo, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page, limit int) ([]*models.MentorshipVideo, *utils.Pagination, error)
	RecordView(ctx context.Context, id uint) error
}

type DashboardService interface {
	GetSuperadminKPIs(ctx context.Context) (*DashboardKPIs, error)
	GetAdminKPIs(ctx context.Context, adminID uint) (*DashboardKPIs, error)
	GetCharts(ctx context.Context) (*ChartData, error)
}

// ServiceManager wires all services and manages their lifecycle
type ServiceManager interface {
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error

	Auth() AuthService
	User() UserService
	Quiz() QuizService
	Payment() PaymentService
	Result() ResultService
	Notification() NotificationService
	Mentorship() MentorshipService
	Dashboard() DashboardService
}
