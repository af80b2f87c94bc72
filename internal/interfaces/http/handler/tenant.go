package handler

import (
	propertyapp "github.com/dormdesk/backend/internal/application/property"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantHandler handles tenant registration and tenancy changes
type TenantHandler struct {
	BaseHandler
	tenantService *propertyapp.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService *propertyapp.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// MoveIn handles POST /tenants: registers a tenant into a vacant room
func (h *TenantHandler) MoveIn(c *gin.Context) {
	var req propertyapp.MoveInRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenant, err := h.tenantService.MoveIn(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tenant)
}

// Get handles GET /tenants/:id
func (h *TenantHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	tenant, err := h.tenantService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// List handles GET /tenants?building_id&room_id&status
func (h *TenantHandler) List(c *gin.Context) {
	var filter propertyapp.TenantListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"building_id": &filter.BuildingID,
		"room_id":     &filter.RoomID,
	}) {
		return
	}
	tenants, total, err := h.tenantService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.ListQuery)
	h.SuccessWithMeta(c, tenants, total, page, size)
}

// UpdateProfile handles PUT /tenants/:id
func (h *TenantHandler) UpdateProfile(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req propertyapp.TenantProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenant, err := h.tenantService.UpdateProfile(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// Reassign handles POST /tenants/:id/reassign
func (h *TenantHandler) Reassign(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req propertyapp.ReassignRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenant, err := h.tenantService.Reassign(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// MoveOut handles POST /tenants/:id/move-out. The body is optional.
func (h *TenantHandler) MoveOut(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req propertyapp.MoveOutRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	tenant, err := h.tenantService.MoveOut(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}
