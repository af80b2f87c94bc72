package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Payment verification outcomes
const (
	OutcomeApproved = "approved"
	OutcomeRejected = "rejected"
)

// BusinessMetrics holds the dormitory counters. The application event
// handlers feed it from committed domain events.
type BusinessMetrics struct {
	readingsRecorded    metric.Int64Counter
	billsGenerated      metric.Int64Counter
	billedAmount        metric.Float64Counter
	paymentsSubmitted   metric.Int64Counter
	paymentsVerified    metric.Int64Counter
	collectedAmount     metric.Float64Counter
	notificationsFailed metric.Int64Counter
}

// NewBusinessMetrics registers the counters on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewBusinessMetrics: meter cannot be nil")
	}

	bm := &BusinessMetrics{}
	var err error

	if bm.readingsRecorded, err = meter.Int64Counter("dorm_meter_readings_total",
		metric.WithDescription("Meter readings recorded"),
		metric.WithUnit("{reading}")); err != nil {
		return nil, err
	}
	if bm.billsGenerated, err = meter.Int64Counter("dorm_bills_generated_total",
		metric.WithDescription("Bills issued"),
		metric.WithUnit("{bill}")); err != nil {
		return nil, err
	}
	if bm.billedAmount, err = meter.Float64Counter("dorm_billed_amount_total",
		metric.WithDescription("Sum of issued bill totals"),
		metric.WithUnit("{currency}")); err != nil {
		return nil, err
	}
	if bm.paymentsSubmitted, err = meter.Int64Counter("dorm_payments_submitted_total",
		metric.WithDescription("Payment slips submitted"),
		metric.WithUnit("{payment}")); err != nil {
		return nil, err
	}
	if bm.paymentsVerified, err = meter.Int64Counter("dorm_payments_verified_total",
		metric.WithDescription("Payments approved or rejected by an admin"),
		metric.WithUnit("{payment}")); err != nil {
		return nil, err
	}
	if bm.collectedAmount, err = meter.Float64Counter("dorm_collected_amount_total",
		metric.WithDescription("Sum of approved payment amounts"),
		metric.WithUnit("{currency}")); err != nil {
		return nil, err
	}
	if bm.notificationsFailed, err = meter.Int64Counter("dorm_notifications_failed_total",
		metric.WithDescription("Notifications that could not be delivered"),
		metric.WithUnit("{notification}")); err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordReading counts a recorded meter reading
func (bm *BusinessMetrics) RecordReading(ctx context.Context) {
	bm.readingsRecorded.Add(ctx, 1)
}

// RecordBillGenerated counts an issued bill and its total
func (bm *BusinessMetrics) RecordBillGenerated(ctx context.Context, total decimal.Decimal) {
	bm.billsGenerated.Add(ctx, 1)
	bm.billedAmount.Add(ctx, total.InexactFloat64())
}

// RecordPaymentSubmitted counts a submitted slip
func (bm *BusinessMetrics) RecordPaymentSubmitted(ctx context.Context) {
	bm.paymentsSubmitted.Add(ctx, 1)
}

// RecordPaymentVerified counts an admin decision. Approved amounts also
// feed the collected total.
func (bm *BusinessMetrics) RecordPaymentVerified(ctx context.Context, outcome string, amount decimal.Decimal) {
	bm.paymentsVerified.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if outcome == OutcomeApproved {
		bm.collectedAmount.Add(ctx, amount.InexactFloat64())
	}
}

// RecordNotificationFailed counts an undelivered notification
func (bm *BusinessMetrics) RecordNotificationFailed(ctx context.Context, channel string) {
	bm.notificationsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", channel)))
}
