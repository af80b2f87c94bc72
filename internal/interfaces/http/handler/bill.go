package handler

import (
	billingapp "github.com/dormdesk/backend/internal/application/billing"
	"github.com/dormdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BillHandler handles bill endpoints for admins and renters
type BillHandler struct {
	BaseHandler
	billService *billingapp.BillService
	actors      ActorResolver
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(billService *billingapp.BillService, actors ActorResolver) *BillHandler {
	return &BillHandler{billService: billService, actors: actors}
}

// Generate handles POST /bills: bills one room for one month
func (h *BillHandler) Generate(c *gin.Context) {
	var req billingapp.GenerateBillRequest
	if !h.bindJSON(c, &req) {
		return
	}
	bill, err := h.billService.Generate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bill)
}

// RunMonthly handles POST /bills/run. Rooms that fail are reported in the
// result rather than failing the request.
func (h *BillHandler) RunMonthly(c *gin.Context) {
	var req billingapp.RunMonthlyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.billService.RunMonthly(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Get handles GET /bills/:id and GET /me/bills/:id
func (h *BillHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	actor, ok := h.actor(c, h.actors)
	if !ok {
		return
	}
	bill, err := h.billService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// List handles GET /bills and GET /me/bills. Renters only ever see their
// own bills whatever the filter says.
func (h *BillHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	actor, ok := h.actor(c, h.actors)
	if !ok {
		return
	}
	bills, total, err := h.billService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.ListQuery)
	h.SuccessWithMeta(c, bills, total, page, size)
}

// Summary handles GET /bills/summary
func (h *BillHandler) Summary(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	actor, ok := h.actor(c, h.actors)
	if !ok {
		return
	}
	summary, err := h.billService.Summary(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ConfirmPaid handles POST /bills/:id/confirm-paid: an admin marks a bill
// paid without a slip, for example after a cash payment
func (h *BillHandler) ConfirmPaid(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	bill, err := h.billService.ConfirmPaid(c.Request.Context(), id, middleware.GetUID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

func (h *BillHandler) bindFilter(c *gin.Context) (billingapp.BillListFilter, bool) {
	var filter billingapp.BillListFilter
	if !h.bindQuery(c, &filter) {
		return filter, false
	}
	ok := h.queryUUIDs(c, map[string]**uuid.UUID{
		"building_id": &filter.BuildingID,
		"room_id":     &filter.RoomID,
		"tenant_id":   &filter.TenantID,
	})
	return filter, ok
}
