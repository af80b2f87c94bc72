// Package handler holds the gin handlers of the dormdesk API. Handlers bind
// and validate input, resolve the caller and delegate to application
// services; every response uses the dto envelope.
package handler

import (
	"context"
	"errors"
	"net/http"

	appshared "github.com/dormdesk/backend/internal/application/shared"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/infrastructure/logger"
	"github.com/dormdesk/backend/internal/interfaces/http/dto"
	"github.com/dormdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActorResolver links an authenticated caller to their tenant record
type ActorResolver interface {
	ResolveActor(ctx context.Context, uid, role string) (appshared.Actor, error)
}

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Forbidden sends a 403 forbidden response
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

// HandleError converts domain errors to HTTP responses. Anything that is not
// a domain error is logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status := dto.GetHTTPStatus(code)
		if status >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Warn("request failed", zap.Error(err))
		}
		h.Error(c, status, code, domainErr.Message)
		return
	}

	logger.FromContext(c.Request.Context()).Error("unexpected error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// bindJSON binds the body into req, answering 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters into req, answering 400 on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// pathID parses the :id path parameter, answering 400 when malformed
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// queryUUIDs parses optional uuid query parameters into the given targets.
// A malformed value answers 400.
func (h *BaseHandler) queryUUIDs(c *gin.Context, targets map[string]**uuid.UUID) bool {
	for name, target := range targets {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
				"Request validation failed",
				getRequestID(c),
				[]dto.ValidationDetail{{Field: name, Message: "Invalid UUID format"}},
			))
			return false
		}
		*target = &id
	}
	return true
}

// actor resolves the authenticated caller. Renters without an active tenant
// record are answered 403.
func (h *BaseHandler) actor(c *gin.Context, resolver ActorResolver) (appshared.Actor, bool) {
	uid, role := middleware.GetUID(c), middleware.GetRole(c)
	if uid == "" {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return appshared.Actor{}, false
	}
	actor, err := resolver.ResolveActor(c.Request.Context(), uid, role)
	if err != nil {
		h.HandleError(c, err)
		return appshared.Actor{}, false
	}
	// a token pinned to a tenant record is stale once the uid maps elsewhere
	if claimed := middleware.GetTenantRecordID(c); claimed != nil && !actor.IsAdmin() {
		if actor.TenantID == nil || *actor.TenantID != *claimed {
			h.Forbidden(c, "Token does not match the current tenancy")
			return appshared.Actor{}, false
		}
	}
	return actor, true
}

// pageOf returns the effective page and page size of a list query
func pageOf(q appshared.ListQuery) (int, int) {
	f := q.ToFilter("")
	return f.Page, f.PageSize
}
