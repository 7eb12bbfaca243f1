package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/osian-labs/quiz-platform/internal/services"
	"github.com/osian-labs/quiz-platform/internal/utils"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

// ErrorResponse is the envelope for every failed request.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse is the envelope for successful requests.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the helpers shared by every resource handler.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs a request-scoped message with the request id attached.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	if requestID := c.GetString("request_id"); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	h.logger.Info(msg, args...)
}

// parseIDParam parses a numeric path parameter. On failure it writes a 400
// response and returns 0, so callers just bail out on a zero value.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: raw,
		})
		return 0
	}
	return uint(id)
}

// parsePagination reads page/limit query parameters with sane bounds.
func (h *BaseHandler) parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

// currentUserID reads the authenticated user id set by the auth middleware.
// Writes a 401 response and returns false when the request is unauthenticated.
func (h *BaseHandler) currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return 0, false
	}
	id, ok := userID.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return 0, false
	}
	return id, true
}

// handleServiceError translates service-layer errors into HTTP responses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: verrs,
		})
		return
	}

	var bre *services.BusinessRuleError
	if errors.As(err, &bre) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: bre.Message,
		})
		return
	}

	var pe *services.PermissionError
	if errors.As(err, &pe) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: pe.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid email or password",
		})
	case errors.Is(err, services.ErrUserDeactivated):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Account is deactivated",
		})
	case errors.Is(err, services.ErrInvalidOTP):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid or expired OTP",
		})
	case errors.Is(err, services.ErrQuizNotPaid):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Quiz does not require payment",
		})
	case errors.Is(err, services.ErrSignatureVerification):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Payment signature verification failed",
		})
	case errors.Is(err, services.ErrPaymentSignatureMissing):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Payment signature missing",
		})
	case errors.Is(err, services.ErrNotParticipant):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Payment required to attempt this quiz",
		})
	case errors.Is(err, services.ErrResultExists):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Quiz already completed",
		})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Email already registered",
		})
	case services.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: notFoundMessage(err),
		})
	default:
		h.logger.Error("unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, services.ErrQuizNotFound):
		return "Quiz not found"
	case errors.Is(err, services.ErrOrderNotFound):
		return "Order not found"
	case errors.Is(err, services.ErrResultNotFound):
		return "Result not found"
	case errors.Is(err, services.ErrNotificationNotFound):
		return "Notification not found"
	case errors.Is(err, services.ErrVideoNotFound):
		return "Video not found"
	default:
		return "Resource not found"
	}
}
