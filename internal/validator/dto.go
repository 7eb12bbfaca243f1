package validator

import (
	"time"

	"github.com/osian-labs/quiz-platform/internal/models"
)

// ===== AUTH =====

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

type ResendOTPRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

// ===== USERS =====

type ProfileRequest struct {
	Avatar         *string `json:"avatar"`
	Age            *int    `json:"age" validate:"omitempty,min=1,max=120"`
	College        *string `json:"college" validate:"omitempty,max=255"`
	Course         *string `json:"course" validate:"omitempty,max=255"`
	Year           *string `json:"year" validate:"omitempty,max=20"`
	State          *string `json:"state" validate:"omitempty,max=100"`
	City           *string `json:"city" validate:"omitempty,max=100"`
	Phone          *string `json:"phone" validate:"omitempty,max=20"`
	CurrentAddress *string `json:"current_address" validate:"omitempty,max=500"`
}

type UpdateProfileRequest struct {
	Name    *string         `json:"name" validate:"omitempty,min=2,max=100"`
	Profile *ProfileRequest `json:"profile"`
}

type AdminUpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Role     *string `json:"role" validate:"omitempty,user_role"`
	IsActive *bool   `json:"is_active"`
}

type UpdateRoleRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,user_role"`
}

type UpdateUserStatusRequest struct {
	UserID   uint `json:"user_id" validate:"required"`
	IsActive bool `json:"is_active"`
}

// ===== QUIZZES =====

type QuestionOptionRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

type QuestionRequest struct {
	QuestionText  string                  `json:"question_text" validate:"required,max=2000"`
	QuestionType  models.QuestionType     `json:"question_type" validate:"required,question_type"`
	Options       []QuestionOptionRequest `json:"options" validate:"omitempty,dive"`
	CorrectAnswer *int                    `json:"correct_answer" validate:"omitempty,min=0"`
}

type QuizCreateRequest struct {
	Title             string            `json:"title" validate:"required,max=255"`
	Category          string            `json:"category" validate:"required,max=100"`
	QuizType          models.QuizType   `json:"quiz_type" validate:"required,quiz_type"`
	Duration          int               `json:"duration" validate:"required,quiz_duration"`
	Price             float64           `json:"price" validate:"omitempty,min=0"`
	RegistrationLimit int               `json:"registration_limit" validate:"omitempty,min=0"`
	ScheduleTime      *time.Time        `json:"schedule_time"`
	CoverImage        string            `json:"cover_image" validate:"omitempty,max=500"`
	PassingScore      *int              `json:"passing_score" validate:"omitempty,passing_score"`
	Questions         []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type QuizUpdateRequest struct {
	Title             *string            `json:"title" validate:"omitempty,max=255"`
	Category          *string            `json:"category" validate:"omitempty,max=100"`
	QuizType          *models.QuizType   `json:"quiz_type" validate:"omitempty,quiz_type"`
	Duration          *int               `json:"duration" validate:"omitempty,quiz_duration"`
	Price             *float64           `json:"price" validate:"omitempty,min=0"`
	RegistrationLimit *int               `json:"registration_limit" validate:"omitempty,min=0"`
	ScheduleTime      *time.Time         `json:"schedule_time"`
	CoverImage        *string            `json:"cover_image" validate:"omitempty,max=500"`
	PassingScore      *int               `json:"passing_score" validate:"omitempty,passing_score"`
	Status            *models.QuizStatus `json:"status" validate:"omitempty,oneof=draft upcoming active completed"`
	Questions         []QuestionRequest  `json:"questions" validate:"omitempty,min=1,dive"`
}

// ===== PAYMENTS =====

type CreateOrderRequest struct {
	QuizID uint `json:"quiz_id" validate:"required"`
}

type VerifyPaymentRequest struct {
	OrderID           string `json:"order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	Status            string `json:"status"`
	PaymentMethod     string `json:"payment_method" validate:"omitempty,max=50"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,order_status"`
}

// ===== RESULTS =====

type AnswerSubmission struct {
	QuestionIndex  int `json:"question_index" validate:"min=0"`
	SelectedAnswer int `json:"selected_answer" validate:"min=0"`
	TimeSpent      int `json:"time_spent" validate:"omitempty,min=0"`
}

type SubmitResultRequest struct {
	QuizID    uint               `json:"quiz_id" validate:"required"`
	Answers   []AnswerSubmission `json:"answers" validate:"required,dive"`
	TimeTaken int                `json:"time_taken" validate:"omitempty,min=0"`
	StartedAt *time.Time         `json:"started_at"`
}

// ===== NOTIFICATIONS =====

type SendNotificationRequest struct {
	Subject   string `json:"subject" validate:"required,max=255"`
	Message   string `json:"message" validate:"required"`
	Recipient string `json:"recipient" validate:"required,recipient_group"`
}

type MarkNotificationsReadRequest struct {
	NotificationIDs []uint `json:"notification_ids" validate:"required,min=1"`
}

// ===== MENTORSHIP =====

type VideoCreateRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	URL         string `json:"url" validate:"required,url,max=500"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,max=500"`
	Duration    string `json:"duration" validate:"omitempty,max=20"`
}

type VideoUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	URL         *string `json:"url" validate:"omitempty,url,max=500"`
	Thumbnail   *string `json:"thumbnail" validate:"omitempty,max=500"`
	Duration    *string `json:"duration" validate:"omitempty,max=20"`
}
