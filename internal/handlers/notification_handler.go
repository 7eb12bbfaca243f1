package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/osian-labs/quiz-platform/internal/services"
	"github.com/osian-labs/quiz-platform/internal/utils"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

type NotificationHandler struct {
	BaseHandler
	notificationService services.NotificationService
	validator           *validator.Validator
}

func NewNotificationHandler(notificationService services.NotificationService, validator *validator.Validator, logger utils.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         NewBaseHandler(logger),
		notificationService: notificationService,
		validator:           validator,
	}
}

// SendNotification broadcasts a notification to a recipient group
// @Summary Send notification
// @Description Fans a notification out to every user in the chosen group
// @Tags notifications
// @Accept json
// @Produce json
// @Param notification body services.SendNotificationRequest true "Notification data"
// @Success 201 {object} SuccessResponse{data=services.SendNotificationResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /notifications/send [post]
func (h *NotificationHandler) SendNotification(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Sending notification", "sender_id", userID, "recipient", req.Recipient)

	resp, err := h.notificationService.Send(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Notification sent",
		Data:    resp,
	})
}

// GetMyNotifications lists the caller's notifications, newest first
// @Summary List notifications
// @Description Lists the authenticated user's notifications
// @Tags notifications
// @Produce json
// @Param limit query int false "Maximum entries"
// @Success 200 {object} SuccessResponse{data=[]models.Notification}
// @Failure 401 {object} ErrorResponse
// @Router /notifications [get]
func (h *NotificationHandler) GetMyNotifications(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	notifications, err := h.notificationService.GetUserNotifications(c.Request.Context(), userID, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: notifications})
}

// MarkRead marks the caller's notifications as read
// @Summary Mark notifications read
// @Description Marks the given notification ids as read for the caller
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body services.MarkNotificationsReadRequest true "Notification ids"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /notifications/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.MarkNotificationsReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	updated, err := h.notificationService.MarkRead(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Notifications marked read",
		Data:    gin.H{"updated": updated},
	})
}
