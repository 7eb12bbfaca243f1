package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/services"
	"github.com/osian-labs/quiz-platform/internal/utils"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

type PaymentHandler struct {
	BaseHandler
	paymentService services.PaymentService
	validator      *validator.Validator
}

func NewPaymentHandler(paymentService services.PaymentService, validator *validator.Validator, logger utils.Logger) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    NewBaseHandler(logger),
		paymentService: paymentService,
		validator:      validator,
	}
}

// CreateOrder opens a payment order for a paid quiz
// @Summary Create order
// @Description Creates a gateway order for a paid quiz enrollment
// @Tags payments
// @Accept json
// @Produce json
// @Param order body services.CreateOrderRequest true "Order data"
// @Success 201 {object} SuccessResponse{data=services.CreateOrderResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /payments/create-order [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating payment order", "user_id", userID, "quiz_id", req.QuizID)

	resp, err := h.paymentService.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Order created",
		Data:    resp,
	})
}

// VerifyPayment verifies the gateway callback signature and settles the order
// @Summary Verify payment
// @Description Checks the gateway signature, marks the order completed or failed, and enrolls the participant
// @Tags payments
// @Accept json
// @Produce json
// @Param verification body services.VerifyPaymentRequest true "Verification data"
// @Success 200 {object} SuccessResponse{data=services.VerifyPaymentResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /payments/verify [post]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Verifying payment", "user_id", userID, "order_id", req.OrderID)

	resp, err := h.paymentService.VerifyPayment(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrPaymentSecretMissing) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Payment gateway not configured",
			})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Payment verified",
		Data:    resp,
	})
}

// GetKey exposes the publishable gateway key for checkout
// @Summary Get gateway key
// @Description Returns the publishable key the frontend needs to open checkout
// @Tags payments
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 500 {object} ErrorResponse
// @Router /payments/key [get]
func (h *PaymentHandler) GetKey(c *gin.Context) {
	key, err := h.paymentService.GetKey(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Payment gateway not configured",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    gin.H{"key": key},
	})
}

// GetMyOrders lists the caller's orders
// @Summary List own orders
// @Description Lists the authenticated user's payment orders
// @Tags payments
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} SuccessResponse{data=services.OrderListResponse}
// @Failure 401 {object} ErrorResponse
// @Router /payments/orders [get]
func (h *PaymentHandler) GetMyOrders(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	page, limit := h.parsePagination(c)

	resp, err := h.paymentService.GetUserOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: resp})
}

// GetOrder retrieves one of the caller's orders by its order id
// @Summary Get order
// @Description Retrieves a single order belonging to the caller
// @Tags payments
// @Produce json
// @Param order_id path string true "Order ID"
// @Success 200 {object} SuccessResponse{data=models.Order}
// @Failure 404 {object} ErrorResponse
// @Router /payments/orders/{order_id} [get]
func (h *PaymentHandler) GetOrder(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	orderID := c.Param("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid order_id parameter",
		})
		return
	}

	order, err := h.paymentService.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: order})
}

// ListOrders lists all orders for administrators
// @Summary List orders
// @Description Lists all payment orders, optionally filtered by status
// @Tags payments
// @Produce json
// @Param status query string false "Order status filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} SuccessResponse{data=services.OrderListResponse}
// @Failure 403 {object} ErrorResponse
// @Router /payments/admin/orders [get]
func (h *PaymentHandler) ListOrders(c *gin.Context) {
	page, limit := h.parsePagination(c)

	var status *models.OrderStatus
	if raw := c.Query("status"); raw != "" {
		s := models.OrderStatus(raw)
		status = &s
	}

	resp, err := h.paymentService.ListOrders(c.Request.Context(), status, page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: resp})
}

// UpdateOrderStatus manually overrides an order's status
// @Summary Update order status
// @Description Sets an order's status, stamping completion time when completing
// @Tags payments
// @Accept json
// @Produce json
// @Param order_id path string true "Order ID"
// @Param request body services.UpdateOrderStatusRequest true "Status change"
// @Success 200 {object} SuccessResponse{data=models.Order}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /payments/admin/orders/{order_id}/status [put]
func (h *PaymentHandler) UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid order_id parameter",
		})
		return
	}

	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	order, err := h.paymentService.UpdateOrderStatus(c.Request.Context(), orderID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Order status updated",
		Data:    order,
	})
}
