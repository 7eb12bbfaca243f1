package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/osian-labs/quiz-platform/internal/events"
	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/payment"
	"github.com/osian-labs/quiz-platform/internal/repositories"
	"github.com/osian-labs/quiz-platform/internal/utils"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

type paymentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	gateway   payment.Gateway
	publisher events.EventPublisher
}

func NewPaymentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, gateway payment.Gateway, publisher events.EventPublisher) PaymentService {
	return &paymentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		gateway:   gateway,
		publisher: publisher,
	}
}

// ===== ORDER CREATION =====

func (s *paymentService) CreateOrder(ctx context.Context, userID uint, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if quiz.QuizType != models.QuizPaid || quiz.Price <= 0 {
		return nil, ErrQuizNotPaid
	}
	if quiz.HasParticipant(userID) {
		return nil, NewBusinessRuleError("already_enrolled", "already enrolled in this quiz")
	}

	orderID := utils.GenerateOrderID()
	amountPaise := int64(quiz.Price * 100)

	gatewayOrder, err := s.gateway.CreateOrder(ctx, amountPaise, "INR", orderID, map[string]interface{}{
		"quiz_id": quiz.ID,
		"user_id": userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	order := &models.Order{
		OrderID:         orderID,
		UserID:          userID,
		Amount:          quiz.Price,
		Currency:        "INR",
		Status:          models.OrderPending,
		RazorpayOrderID: &gatewayOrder.ID,
		Item: datatypes.NewJSONType(models.OrderItem{
			ItemType: "quiz",
			ItemID:   quiz.ID,
			Name:     quiz.Title,
			Price:    quiz.Price,
			Quantity: 1,
		}),
	}

	if err := s.repo.Order().Create(ctx, nil, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("Order created", "order_id", orderID, "user_id", userID, "quiz_id", quiz.ID, "amount", quiz.Price)

	return &CreateOrderResponse{
		Order:          order,
		GatewayOrderID: gatewayOrder.ID,
		Amount:         amountPaise,
		Currency:       "INR",
		GatewayKeyID:   s.gateway.KeyID(),
	}, nil
}

// ===== PAYMENT VERIFICATION =====

// VerifyPayment checks the gateway signature before any state change. The
// client-echoed payment status is trusted only after the signature holds.
func (s *paymentService) VerifyPayment(ctx context.Context, userID uint, req *VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	order, err := s.repo.Order().GetByOrderID(ctx, nil, req.OrderID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	secret := s.gateway.KeySecret()
	if secret == "" {
		return nil, ErrPaymentSecretMissing
	}
	if req.RazorpaySignature == "" || order.RazorpayOrderID == nil {
		return nil, ErrPaymentSignatureMissing
	}

	if !payment.VerifySignature(secret, *order.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		s.logger.Warn("Payment signature mismatch", "order_id", req.OrderID, "user_id", userID)
		return nil, ErrSignatureVerification
	}

	if req.Status == "success" {
		now := time.Now()
		order.Status = models.OrderCompleted
		order.CompletedAt = &now
		order.TransactionID = &req.RazorpayPaymentID
		order.PaymentMethod = req.PaymentMethod
	} else {
		order.Status = models.OrderFailed
	}

	if err := s.repo.Order().Update(ctx, nil, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if order.Status == models.OrderCompleted {
		item := order.Item.Data()
		if err := s.enrollParticipant(ctx, item.ItemID, order.UserID); err != nil {
			// Order is already completed, enrollment retries on next verify call
			s.logger.Error("Failed to enroll participant", "order_id", order.OrderID, "quiz_id", item.ItemID, "error", err)
		}

		s.publishPaymentCompleted(ctx, order, item)
	}

	s.logger.Info("Payment verified", "order_id", order.OrderID, "status", order.Status)

	return &VerifyPaymentResponse{OrderID: order.OrderID, Status: order.Status}, nil
}

// enrollParticipant appends the user to the quiz's participant list and bumps
// the registration counter. Idempotent: an existing entry is left alone.
func (s *paymentService) enrollParticipant(ctx context.Context, quizID, userID uint) error {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return fmt.Errorf("failed to get quiz: %w", err)
	}

	if quiz.HasParticipant(userID) {
		return nil
	}

	quiz.Participants = append(quiz.Participants, models.Participant{
		UserID:   userID,
		JoinedAt: time.Now(),
	})
	quiz.RegisteredUsers++

	if err := s.repo.Quiz().Update(ctx, nil, quiz); err != nil {
		return fmt.Errorf("failed to enroll participant: %w", err)
	}

	s.logger.Info("Participant enrolled", "quiz_id", quizID, "user_id", userID)

	return nil
}

func (s *paymentService) publishPaymentCompleted(ctx context.Context, order *models.Order, item models.OrderItem) {
	event := events.NewEvent(events.EventPaymentCompleted, events.PaymentCompletedEvent{
		OrderID:       order.OrderID,
		UserID:        order.UserID,
		QuizID:        item.ItemID,
		Amount:        order.Amount,
		TransactionID: derefStr(order.TransactionID),
	})

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish payment event", "order_id", order.OrderID, "error", err)
	}
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ===== KEY EXPOSURE =====

func (s *paymentService) GetKey(ctx context.Context) (string, error) {
	key := s.gateway.KeyID()
	if key == "" {
		return "", ErrPaymentSecretMissing
	}
	return key, nil
}

// ===== ORDER LISTINGS =====

func (s *paymentService) GetUserOrders(ctx context.Context, userID uint, page, limit int) (*OrderListResponse, error) {
	if limit < 1 {
		limit = 10
	}

	filters := repositories.OrderFilters{
		UserID: &userID,
		Limit:  limit,
		Offset: utils.PageOffset(page, limit),
	}

	orders, total, err := s.repo.Order().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	pagination := utils.NewPagination(total, page, limit)

	return &OrderListResponse{Orders: orders, Pagination: &pagination}, nil
}

func (s *paymentService) GetOrder(ctx context.Context, userID uint, orderID string) (*models.Order, error) {
	order, err := s.repo.Order().GetByOrderID(ctx, nil, orderID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	// Other users' orders are indistinguishable from missing ones
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}

	return order, nil
}

// ===== ADMIN OPERATIONS =====

func (s *paymentService) ListOrders(ctx context.Context, status *models.OrderStatus, page, limit int) (*OrderListResponse, error) {
	if limit < 1 {
		limit = 10
	}

	filters := repositories.OrderFilters{
		Status: status,
		Limit:  limit,
		Offset: utils.PageOffset(page, limit),
	}

	orders, total, err := s.repo.Order().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	pagination := utils.NewPagination(total, page, limit)

	return &OrderListResponse{Orders: orders, Pagination: &pagination}, nil
}

func (s *paymentService) UpdateOrderStatus(ctx context.Context, orderID string, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	order, err := s.repo.Order().GetByOrderID(ctx, nil, orderID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	order.Status = req.Status
	if req.Status == models.OrderCompleted && order.CompletedAt == nil {
		now := time.Now()
		order.CompletedAt = &now
	}

	if err := s.repo.Order().Update(ctx, nil, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info("Order status updated by admin", "order_id", orderID, "status", req.Status)

	return order, nil
}
