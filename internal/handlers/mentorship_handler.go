package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osian-labs/quiz-platform/internal/services"
	"github.com/osian-labs/quiz-platform/internal/utils"
	"github.com/osian-labs/quiz-platform/internal/validator"
)

type MentorshipHandler struct {
	BaseHandler
	mentorshipService services.MentorshipService
	validator         *validator.Validator
}

func NewMentorshipHandler(mentorshipService services.MentorshipService, validator *validator.Validator, logger utils.Logger) *MentorshipHandler {
	return &MentorshipHandler{
		BaseHandler:       NewBaseHandler(logger),
		mentorshipService: mentorshipService,
		validator:         validator,
	}
}

// CreateVideo publishes a mentorship video
// @Summary Create video
// @Description Publishes a mentorship video entry
// @Tags mentorship
// @Accept json
// @Produce json
// @Param video body services.VideoCreateRequest true "Video data"
// @Success 201 {object} SuccessResponse{data=models.MentorshipVideo}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /mentorship [post]
func (h *MentorshipHandler) CreateVideo(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.VideoCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	video, err := h.mentorshipService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Video created",
		Data:    video,
	})
}

// GetVideo retrieves a mentorship video by id
// @Summary Get video
// @Tags mentorship
// @Produce json
// @Param id path uint true "Video ID"
// @Success 200 {object} SuccessResponse{data=models.MentorshipVideo}
// @Failure 404 {object} ErrorResponse
// @Router /mentorship/{id} [get]
func (h *MentorshipHandler) GetVideo(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	video, err := h.mentorshipService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: video})
}

// UpdateVideo updates a mentorship video
// @Summary Update video
// @Tags mentorship
// @Accept json
// @Produce json
// @Param id path uint true "Video ID"
// @Param video body services.VideoUpdateRequest true "Video update data"
// @Success 200 {object} SuccessResponse{data=models.MentorshipVideo}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /mentorship/{id} [put]
func (h *MentorshipHandler) UpdateVideo(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.VideoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	video, err := h.mentorshipService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Video updated",
		Data:    video,
	})
}

// DeleteVideo removes a mentorship video
// @Summary Delete video
// @Tags mentorship
// @Produce json
// @Param id path uint true "Video ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /mentorship/{id} [delete]
func (h *MentorshipHandler) DeleteVideo(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.mentorshipService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Video deleted",
	})
}

// ListVideos lists mentorship videos, newest first
// @Summary List videos
// @Tags mentorship
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} SuccessResponse
// @Router /mentorship [get]
func (h *MentorshipHandler) ListVideos(c *gin.Context) {
	page, limit := h.parsePagination(c)

	videos, pagination, err := h.mentorshipService.List(c.Request.Context(), page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data: gin.H{
			"videos":     videos,
			"pagination": pagination,
		},
	})
}

// RecordView increments a video's view counter
// @Summary Record view
// @Tags mentorship
// @Produce json
// @Param id path uint true "Video ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /mentorship/{id}/view [post]
func (h *MentorshipHandler) RecordView(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.mentorshipService.RecordView(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
