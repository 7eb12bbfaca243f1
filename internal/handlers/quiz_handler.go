package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osian-labs/quiz-platform/internal/services"
	"github.com/osian-labs/quiz-platform/internal/utils"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

type QuizHandler struct {
	BaseHandler
	quizService services.QuizService
	validator   *validator.Validator
}

func NewQuizHandler(quizService services.QuizService, validator *validator.Validator, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
		validator:   validator,
	}
}

// CreateQuiz creates a new quiz
// @Summary Create quiz
// @Description Creates a quiz with embedded questions
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body services.QuizCreateRequest true "Quiz data"
// @Success 201 {object} SuccessResponse{data=models.Quiz}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.QuizCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating quiz", "creator_id", userID, "title", req.Title)

	quiz, err := h.quizService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Quiz created",
		Data:    quiz,
	})
}

// GetQuiz retrieves a quiz by id
// @Summary Get quiz
// @Description Retrieves a quiz; correct answers are hidden from regular users
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} SuccessResponse{data=models.Quiz}
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), id, currentUserRole(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: quiz})
}

// UpdateQuiz updates an existing quiz
// @Summary Update quiz
// @Description Applies partial updates to a quiz owned by the caller
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path uint true "Quiz ID"
// @Param quiz body services.QuizUpdateRequest true "Quiz update data"
// @Success 200 {object} SuccessResponse{data=models.Quiz}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [put]
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.QuizUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), userID, currentUserRole(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Quiz updated",
		Data:    quiz,
	})
}

// DeleteQuiz removes a quiz
// @Summary Delete quiz
// @Description Deletes a quiz owned by the caller
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting quiz", "quiz_id", id)

	if err := h.quizService.Delete(c.Request.Context(), userID, currentUserRole(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Quiz deleted",
	})
}

// ListQuizzes lists all quizzes with pagination
// @Summary List quizzes
// @Description Lists quizzes page by page, newest first
// @Tags quizzes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} SuccessResponse{data=services.QuizListResponse}
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	page, limit := h.parsePagination(c)

	resp, err := h.quizService.ListAll(c.Request.Context(), currentUserRole(c), page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: resp})
}

// GetFeatured returns the home catalog sections
// @Summary Get featured quizzes
// @Description Returns live, paid and upcoming sections plus per-category groups
// @Tags quizzes
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.FeaturedQuizzesResponse}
// @Router /quizzes/featured [get]
func (h *QuizHandler) GetFeatured(c *gin.Context) {
	resp, err := h.quizService.GetFeatured(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: resp})
}

// GetCategories returns quiz counts per category
// @Summary Get quiz categories
// @Description Returns the categories in use with their quiz counts
// @Tags quizzes
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]services.CategoryChartPoint}
// @Router /quizzes/categories [get]
func (h *QuizHandler) GetCategories(c *gin.Context) {
	categories, err := h.quizService.GetCategories(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: categories})
}

// GetMyQuizzes lists quizzes created by the caller
// @Summary List own quizzes
// @Description Lists quizzes created by the authenticated admin
// @Tags quizzes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} SuccessResponse{data=services.QuizListResponse}
// @Failure 401 {object} ErrorResponse
// @Router /quizzes/mine [get]
func (h *QuizHandler) GetMyQuizzes(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	page, limit := h.parsePagination(c)

	resp, err := h.quizService.GetByCreator(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: resp})
}

// GetRegistered lists paid quizzes the caller is enrolled in
// @Summary List registered quizzes
// @Description Lists quizzes where the caller appears as a participant
// @Tags quizzes
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.Quiz}
// @Failure 401 {object} ErrorResponse
// @Router /quizzes/registered [get]
func (h *QuizHandler) GetRegistered(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	quizzes, err := h.quizService.GetRegistered(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: quizzes})
}

// GetQuizStats returns aggregate attempt statistics for a quiz
// @Summary Get quiz stats
// @Description Returns attempt counts, average percentage and pass rate
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} SuccessResponse{data=services.QuizStatsResponse}
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id}/stats [get]
func (h *QuizHandler) GetQuizStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	stats, err := h.quizService.GetStats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: stats})
}
