package event

import (
	"context"
	"fmt"
	"time"

	"github.com/dormdesk/backend/internal/domain/billing"
	"github.com/dormdesk/backend/internal/domain/payment"
	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/infrastructure/notification"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notification channels, used as the failure counter attribute
const (
	ChannelEmail   = "email"
	ChannelWebhook = "webhook"
)

type tenantReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*property.Tenant, error)
}

type roomReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*property.Room, error)
}

type billReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error)
}

// FailureRecorder counts undelivered notifications
type FailureRecorder interface {
	RecordNotificationFailed(ctx context.Context, channel string)
}

// NotificationHandler emails tenants about their bills and payments and
// tells the office chat when a slip needs checking. Delivery errors are
// counted and returned to the bus, which logs them.
type NotificationHandler struct {
	tenants  tenantReader
	rooms    roomReader
	bills    billReader
	mailer   notification.Mailer
	webhook  notification.Webhook
	failures FailureRecorder
	loc      *time.Location
	logger   *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler. loc is used to
// print dates; nil means UTC.
func NewNotificationHandler(
	tenants tenantReader,
	rooms roomReader,
	bills billReader,
	mailer notification.Mailer,
	webhook notification.Webhook,
	failures FailureRecorder,
	loc *time.Location,
	logger *zap.Logger,
) *NotificationHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &NotificationHandler{
		tenants:  tenants,
		rooms:    rooms,
		bills:    bills,
		mailer:   mailer,
		webhook:  webhook,
		failures: failures,
		loc:      loc,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationHandler) EventTypes() []string {
	return []string{
		billing.EventTypeBillIssued,
		payment.EventTypePaymentSubmitted,
		payment.EventTypePaymentApproved,
		payment.EventTypePaymentRejected,
	}
}

// Handle sends the notification matching the event
func (h *NotificationHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	switch ev := e.(type) {
	case *billing.BillEvent:
		if ev.EventType() == billing.EventTypeBillIssued {
			return h.billIssued(ctx, ev)
		}
	case *payment.PaymentEvent:
		if ev.EventType() == payment.EventTypePaymentSubmitted {
			return h.paymentSubmitted(ctx, ev)
		}
		return h.paymentVerified(ctx, ev)
	default:
		return fmt.Errorf("unexpected event type: %s", e.EventType())
	}
	return nil
}

func (h *NotificationHandler) billIssued(ctx context.Context, ev *billing.BillEvent) error {
	tenant, err := h.tenants.FindByID(ctx, ev.TenantID)
	if err != nil {
		return err
	}
	room, err := h.roomNumber(ctx, ev.RoomID)
	if err != nil {
		return err
	}
	return h.email(ctx, ev, tenant, billIssuedEmail(ev, room, h.loc))
}

func (h *NotificationHandler) paymentVerified(ctx context.Context, ev *payment.PaymentEvent) error {
	tenant, err := h.tenants.FindByID(ctx, ev.TenantID)
	if err != nil {
		return err
	}
	bill, err := h.bills.FindByID(ctx, ev.BillID)
	if err != nil {
		return err
	}
	if bill == nil {
		return shared.NewNotFoundError("Bill")
	}

	var msg notification.Email
	switch ev.EventType() {
	case payment.EventTypePaymentApproved:
		msg = paymentApprovedEmail(ev, bill, h.loc)
	case payment.EventTypePaymentRejected:
		msg = paymentRejectedEmail(ev, bill)
	default:
		return nil
	}
	return h.email(ctx, ev, tenant, msg)
}

func (h *NotificationHandler) paymentSubmitted(ctx context.Context, ev *payment.PaymentEvent) error {
	bill, err := h.bills.FindByID(ctx, ev.BillID)
	if err != nil {
		return err
	}
	if bill == nil {
		return shared.NewNotFoundError("Bill")
	}
	room, err := h.roomNumber(ctx, bill.RoomID)
	if err != nil {
		return err
	}

	msg := notification.ChatMessage{
		Text: fmt.Sprintf("Room %s submitted a payment slip for %s (%s). Please verify.",
			room, bill.Month.String(), ev.Amount.StringFixed(2)),
		Fields: map[string]any{
			"payment_id": ev.PaymentID.String(),
			"bill_id":    ev.BillID.String(),
			"room":       room,
			"month":      bill.Month.String(),
			"amount":     ev.Amount.StringFixed(2),
			"method":     string(ev.Method),
		},
	}
	if err := h.webhook.Post(ctx, msg); err != nil {
		h.failed(ctx, ChannelWebhook, ev, err)
		return err
	}
	return nil
}

func (h *NotificationHandler) email(ctx context.Context, e shared.DomainEvent, tenant *property.Tenant, msg notification.Email) error {
	if tenant == nil || tenant.Email == "" {
		h.logger.Debug("tenant has no email address, skipping notification",
			zap.String("subject", msg.Subject))
		return nil
	}
	msg.ToName = tenant.Name
	msg.ToAddress = tenant.Email

	if err := h.mailer.Send(ctx, msg); err != nil {
		h.failed(ctx, ChannelEmail, e, err)
		return err
	}
	return nil
}

func (h *NotificationHandler) roomNumber(ctx context.Context, roomID uuid.UUID) (string, error) {
	room, err := h.rooms.FindByID(ctx, roomID)
	if err != nil {
		return "", err
	}
	if room == nil {
		return "", shared.NewNotFoundError("Room")
	}
	return room.Number, nil
}

func (h *NotificationHandler) failed(ctx context.Context, channel string, e shared.DomainEvent, err error) {
	if h.failures != nil {
		h.failures.RecordNotificationFailed(ctx, channel)
	}
	h.logger.Warn("notification failed",
		zap.String("channel", channel),
		zap.String("event_type", e.EventType()),
		zap.String("event_id", e.EventID().String()),
		zap.Error(err))
}

var _ shared.EventHandler = (*NotificationHandler)(nil)
