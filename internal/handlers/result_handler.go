package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osian-labs/quiz-platform/internal/services"
	"github.com/osian-labs/quiz-platform/internal/utils"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
	validator     *validator.Validator
}

func NewResultHandler(resultService services.ResultService, validator *validator.Validator, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
		validator:     validator,
	}
}

// SubmitResult grades and records a quiz attempt
// @Summary Submit result
// @Description Grades the submitted answers and records the attempt
// @Tags results
// @Accept json
// @Produce json
// @Param submission body services.SubmitResultRequest true "Answer submission"
// @Success 201 {object} SuccessResponse{data=services.SubmitResultResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /results/submit [post]
func (h *ResultHandler) SubmitResult(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.SubmitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting quiz result", "user_id", userID, "quiz_id", req.QuizID)

	resp, err := h.resultService.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Result recorded",
		Data:    resp,
	})
}

// GetResult retrieves a result by id
// @Summary Get result
// @Description Retrieves a result; only the owner or staff may read it
// @Tags results
// @Produce json
// @Param id path uint true "Result ID"
// @Success 200 {object} SuccessResponse{data=models.Result}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /results/{id} [get]
func (h *ResultHandler) GetResult(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	result, err := h.resultService.GetByID(c.Request.Context(), userID, currentUserRole(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: result})
}

// GetMyResults lists the caller's results
// @Summary List own results
// @Description Lists the authenticated user's completed attempts
// @Tags results
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} SuccessResponse{data=services.ResultListResponse}
// @Failure 401 {object} ErrorResponse
// @Router /results/mine [get]
func (h *ResultHandler) GetMyResults(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	page, limit := h.parsePagination(c)

	resp, err := h.resultService.GetUserResults(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: resp})
}

// GetQuizResults lists completed results for a quiz
// @Summary List quiz results
// @Description Lists completed attempts for a quiz
// @Tags results
// @Produce json
// @Param quiz_id path uint true "Quiz ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} SuccessResponse{data=services.ResultListResponse}
// @Failure 404 {object} ErrorResponse
// @Router /results/quiz/{quiz_id} [get]
func (h *ResultHandler) GetQuizResults(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	page, limit := h.parsePagination(c)

	resp, err := h.resultService.GetQuizResults(c.Request.Context(), quizID, page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: resp})
}

// GetLeaderboard returns the ranked top finishers for a quiz
// @Summary Get leaderboard
// @Description Returns finishers ranked by score, ties broken by time taken
// @Tags results
// @Produce json
// @Param quiz_id path uint true "Quiz ID"
// @Param limit query int false "Entry limit"
// @Success 200 {object} SuccessResponse{data=services.LeaderboardResponse}
// @Failure 404 {object} ErrorResponse
// @Router /results/leaderboard/{quiz_id} [get]
func (h *ResultHandler) GetLeaderboard(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	_, limit := h.parsePagination(c)

	resp, err := h.resultService.GetLeaderboard(c.Request.Context(), quizID, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: resp})
}

// GetAdminResults lists results across the caller's quizzes
// @Summary List results for admins
// @Description Lists completed attempts; admins see only their own quizzes
// @Tags results
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} SuccessResponse{data=services.ResultListResponse}
// @Failure 403 {object} ErrorResponse
// @Router /results/admin [get]
func (h *ResultHandler) GetAdminResults(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	page, limit := h.parsePagination(c)

	resp, err := h.resultService.GetAdminResults(c.Request.Context(), userID, currentUserRole(c), page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: resp})
}

// ExportResults streams an Excel workbook of results
// @Summary Export results
// @Description Downloads the caller's visible results as an Excel workbook
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /results/admin/export [get]
func (h *ResultHandler) ExportResults(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting results", "user_id", userID)

	data, err := h.resultService.ExportAdminResults(c.Request.Context(), userID, currentUserRole(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("results_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
