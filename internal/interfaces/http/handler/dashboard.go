package handler

import (
	reportapp "github.com/dormdesk/backend/internal/application/report"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DashboardHandler serves the admin overview
type DashboardHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *reportapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get handles GET /dashboard?building_id
func (h *DashboardHandler) Get(c *gin.Context) {
	var buildingID *uuid.UUID
	if !h.queryUUIDs(c, map[string]**uuid.UUID{"building_id": &buildingID}) {
		return
	}
	dashboard, err := h.dashboardService.Dashboard(c.Request.Context(), buildingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}
