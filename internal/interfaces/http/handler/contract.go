package handler

import (
	propertyapp "github.com/dormdesk/backend/internal/application/property"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContractHandler handles lease contract endpoints
type ContractHandler struct {
	BaseHandler
	contractService *propertyapp.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *propertyapp.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// Create handles POST /contracts
func (h *ContractHandler) Create(c *gin.Context) {
	var req propertyapp.CreateContractRequest
	if !h.bindJSON(c, &req) {
		return
	}
	contract, err := h.contractService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contract)
}

// Get handles GET /contracts/:id
func (h *ContractHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	contract, err := h.contractService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}

// List handles GET /contracts?room_id&tenant_id&status
func (h *ContractHandler) List(c *gin.Context) {
	var filter propertyapp.ContractListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"room_id":   &filter.RoomID,
		"tenant_id": &filter.TenantID,
	}) {
		return
	}
	contracts, total, err := h.contractService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.ListQuery)
	h.SuccessWithMeta(c, contracts, total, page, size)
}

// Terminate handles POST /contracts/:id/terminate
func (h *ContractHandler) Terminate(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	contract, err := h.contractService.Terminate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contract)
}
