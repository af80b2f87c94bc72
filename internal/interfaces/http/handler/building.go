package handler

import (
	propertyapp "github.com/dormdesk/backend/internal/application/property"
	"github.com/dormdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// BuildingHandler handles building endpoints
type BuildingHandler struct {
	BaseHandler
	buildingService *propertyapp.BuildingService
}

// NewBuildingHandler creates a new BuildingHandler
func NewBuildingHandler(buildingService *propertyapp.BuildingService) *BuildingHandler {
	return &BuildingHandler{buildingService: buildingService}
}

// Create handles POST /buildings. The calling admin becomes the building's
// manager.
func (h *BuildingHandler) Create(c *gin.Context) {
	var req propertyapp.CreateBuildingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.AdminUID = middleware.GetUID(c)

	building, err := h.buildingService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, building)
}

// Get handles GET /buildings/:id
func (h *BuildingHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	building, err := h.buildingService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, building)
}

// List handles GET /buildings
func (h *BuildingHandler) List(c *gin.Context) {
	var filter propertyapp.BuildingListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	buildings, total, err := h.buildingService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.ListQuery)
	h.SuccessWithMeta(c, buildings, total, page, size)
}

// Update handles PUT /buildings/:id
func (h *BuildingHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req propertyapp.UpdateBuildingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	building, err := h.buildingService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, building)
}

// Delete handles DELETE /buildings/:id. Buildings with rooms are refused.
func (h *BuildingHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.buildingService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
