package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osian-labs/quiz-platform/internal/models"
	"github.com/osian-labs/quiz-platform/internal/services"
	"github.com/osian-labs/quiz-platform/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      NewBaseHandler(logger),
		dashboardService: dashboardService,
	}
}

// GetKPIs returns dashboard KPIs scoped to the caller's role
// @Summary Get dashboard KPIs
// @Description Superadmins see platform-wide totals; admins see totals over their own quizzes
// @Tags analytics
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.DashboardKPIs}
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /analytics/kpis [get]
func (h *DashboardHandler) GetKPIs(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var (
		kpis *services.DashboardKPIs
		err  error
	)
	if currentUserRole(c) == models.RoleSuperAdmin {
		kpis, err = h.dashboardService.GetSuperadminKPIs(c.Request.Context())
	} else {
		kpis, err = h.dashboardService.GetAdminKPIs(c.Request.Context(), userID)
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: kpis})
}

// GetCharts returns chart datasets for the dashboard
// @Summary Get dashboard charts
// @Description Returns quizzes-by-category and attempts-by-day series
// @Tags analytics
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.ChartData}
// @Failure 403 {object} ErrorResponse
// @Router /analytics/charts [get]
func (h *DashboardHandler) GetCharts(c *gin.Context) {
	charts, err := h.dashboardService.GetCharts(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: charts})
}
