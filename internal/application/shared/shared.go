// Package shared holds the ports and helpers every application service uses.
package shared

import (
	"context"
	"time"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TxManager runs fn in one database transaction. Repositories called with
// the ctx passed to fn join that transaction. Nested calls join the outer one.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock returns the current instant
type Clock func() time.Time

// SystemClock is the wall clock in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}

// PublishEvents collects pending events from the aggregates, clears them and
// publishes them. Call it only after the owning transaction committed.
// Publish failures are logged; the state change already happened.
func PublishEvents(ctx context.Context, publisher shared.EventPublisher, aggregates ...shared.AggregateRoot) {
	var events []shared.DomainEvent
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.FromContext(ctx).Error("failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

// Actor is the authenticated caller of a use case
type Actor struct {
	UID  string
	Role string
	// TenantID is set for renters linked to a tenant record
	TenantID *uuid.UUID
}

// Role names carried in auth claims
const (
	RoleAdmin  = "admin"
	RoleTenant = "tenant"
)

// IsAdmin reports whether the actor manages the property
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccessTenant reports whether the actor may see data of tenantID
func (a Actor) CanAccessTenant(tenantID uuid.UUID) bool {
	if a.IsAdmin() {
		return true
	}
	return a.TenantID != nil && *a.TenantID == tenantID
}
