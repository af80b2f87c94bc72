package handler

import (
	paymentapp "github.com/dormdesk/backend/internal/application/payment"
	"github.com/dormdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles slip submission and verification
type PaymentHandler struct {
	BaseHandler
	paymentService *paymentapp.Service
	actors         ActorResolver
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *paymentapp.Service, actors ActorResolver) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, actors: actors}
}

// RequestSlipUpload handles POST /me/bills/:id/slip-upload-url
func (h *PaymentHandler) RequestSlipUpload(c *gin.Context) {
	billID, ok := h.pathID(c)
	if !ok {
		return
	}
	var req paymentapp.SlipUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actor, ok := h.actor(c, h.actors)
	if !ok {
		return
	}
	upload, err := h.paymentService.RequestSlipUpload(c.Request.Context(), actor, billID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}

// Submit handles POST /me/payments
func (h *PaymentHandler) Submit(c *gin.Context) {
	var req paymentapp.SubmitPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actor, ok := h.actor(c, h.actors)
	if !ok {
		return
	}
	p, err := h.paymentService.Submit(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// Approve handles POST /payments/:id/approve
func (h *PaymentHandler) Approve(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	p, err := h.paymentService.Approve(c.Request.Context(), id, middleware.GetUID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Reject handles POST /payments/:id/reject
func (h *PaymentHandler) Reject(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req paymentapp.RejectPaymentRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	p, err := h.paymentService.Reject(c.Request.Context(), id, middleware.GetUID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	actor, ok := h.actor(c, h.actors)
	if !ok {
		return
	}
	p, err := h.paymentService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// List handles GET /payments and GET /me/payments
func (h *PaymentHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	actor, ok := h.actor(c, h.actors)
	if !ok {
		return
	}
	payments, total, err := h.paymentService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.ListQuery)
	h.SuccessWithMeta(c, payments, total, page, size)
}

// Summary handles GET /payments/summary
func (h *PaymentHandler) Summary(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	actor, ok := h.actor(c, h.actors)
	if !ok {
		return
	}
	summary, err := h.paymentService.Summary(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

func (h *PaymentHandler) bindFilter(c *gin.Context) (paymentapp.PaymentListFilter, bool) {
	var filter paymentapp.PaymentListFilter
	if !h.bindQuery(c, &filter) {
		return filter, false
	}
	ok := h.queryUUIDs(c, map[string]**uuid.UUID{
		"bill_id":   &filter.BillID,
		"tenant_id": &filter.TenantID,
	})
	return filter, ok
}
