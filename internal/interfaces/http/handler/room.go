package handler

import (
	propertyapp "github.com/dormdesk/backend/internal/application/property"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RoomHandler handles room endpoints
type RoomHandler struct {
	BaseHandler
	roomService *propertyapp.RoomService
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(roomService *propertyapp.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// Create handles POST /rooms
func (h *RoomHandler) Create(c *gin.Context) {
	var req propertyapp.CreateRoomRequest
	if !h.bindJSON(c, &req) {
		return
	}
	room, err := h.roomService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, room)
}

// Get handles GET /rooms/:id
func (h *RoomHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	room, err := h.roomService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, room)
}

// List handles GET /rooms?building_id&status&floor
func (h *RoomHandler) List(c *gin.Context) {
	var filter propertyapp.RoomListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{"building_id": &filter.BuildingID}) {
		return
	}
	rooms, total, err := h.roomService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.ListQuery)
	h.SuccessWithMeta(c, rooms, total, page, size)
}

// Update handles PUT /rooms/:id
func (h *RoomHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req propertyapp.UpdateRoomRequest
	if !h.bindJSON(c, &req) {
		return
	}
	room, err := h.roomService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, room)
}

// SetStatus handles PUT /rooms/:id/status. Occupancy itself changes only
// through move-in, reassign and move-out.
func (h *RoomHandler) SetStatus(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req propertyapp.SetRoomStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	room, err := h.roomService.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, room)
}

// Delete handles DELETE /rooms/:id
func (h *RoomHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.roomService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
