package handler

import (
	meteringapp "github.com/dormdesk/backend/internal/application/metering"
	"github.com/dormdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MeterReadingHandler handles monthly meter readings
type MeterReadingHandler struct {
	BaseHandler
	readingService *meteringapp.ReadingService
}

// NewMeterReadingHandler creates a new MeterReadingHandler
func NewMeterReadingHandler(readingService *meteringapp.ReadingService) *MeterReadingHandler {
	return &MeterReadingHandler{readingService: readingService}
}

// Record handles POST /meter-readings
func (h *MeterReadingHandler) Record(c *gin.Context) {
	var req meteringapp.RecordReadingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	reading, err := h.readingService.RecordReading(c.Request.Context(), req, middleware.GetUID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reading)
}

// Get handles GET /meter-readings/:id
func (h *MeterReadingHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	reading, err := h.readingService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reading)
}

// List handles GET /meter-readings?building_id&room_id&month
func (h *MeterReadingHandler) List(c *gin.Context) {
	var filter meteringapp.ReadingListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"building_id": &filter.BuildingID,
		"room_id":     &filter.RoomID,
	}) {
		return
	}
	readings, total, err := h.readingService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.ListQuery)
	h.SuccessWithMeta(c, readings, total, page, size)
}

// previousQuery is the query of GET /meter-readings/previous
type previousQuery struct {
	RoomID string `form:"room_id" binding:"required,uuid"`
	Month  string `form:"month" binding:"required,month"`
}

// Previous handles GET /meter-readings/previous: the values a new reading
// for the month starts from
func (h *MeterReadingHandler) Previous(c *gin.Context) {
	var q previousQuery
	if !h.bindQuery(c, &q) {
		return
	}
	prev, err := h.readingService.PreviewPrevious(c.Request.Context(), uuid.MustParse(q.RoomID), q.Month)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, prev)
}
