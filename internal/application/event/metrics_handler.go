// Package event holds the subscribers that react to committed domain
// events: business metrics, tenant notifications and the realtime relay.
package event

import (
	"context"

	"github.com/dormdesk/backend/internal/domain/billing"
	"github.com/dormdesk/backend/internal/domain/metering"
	"github.com/dormdesk/backend/internal/domain/payment"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// BusinessRecorder is the subset of telemetry.BusinessMetrics fed by events
type BusinessRecorder interface {
	RecordReading(ctx context.Context)
	RecordBillGenerated(ctx context.Context, total decimal.Decimal)
	RecordPaymentSubmitted(ctx context.Context)
	RecordPaymentVerified(ctx context.Context, outcome string, amount decimal.Decimal)
}

// MetricsHandler turns domain events into business counters
type MetricsHandler struct {
	metrics BusinessRecorder
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(metrics BusinessRecorder) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// EventTypes returns the event types this handler is interested in
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		metering.EventTypeMeterReadingRecorded,
		billing.EventTypeBillIssued,
		payment.EventTypePaymentSubmitted,
		payment.EventTypePaymentApproved,
		payment.EventTypePaymentRejected,
	}
}

// Handle records the counter matching the event
func (h *MetricsHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	switch ev := e.(type) {
	case *metering.MeterReadingRecordedEvent:
		h.metrics.RecordReading(ctx)
	case *billing.BillEvent:
		if ev.EventType() == billing.EventTypeBillIssued {
			h.metrics.RecordBillGenerated(ctx, ev.TotalAmount)
		}
	case *payment.PaymentEvent:
		switch ev.EventType() {
		case payment.EventTypePaymentSubmitted:
			h.metrics.RecordPaymentSubmitted(ctx)
		case payment.EventTypePaymentApproved:
			h.metrics.RecordPaymentVerified(ctx, telemetry.OutcomeApproved, ev.Amount)
		case payment.EventTypePaymentRejected:
			h.metrics.RecordPaymentVerified(ctx, telemetry.OutcomeRejected, ev.Amount)
		}
	}
	return nil
}

var _ shared.EventHandler = (*MetricsHandler)(nil)
