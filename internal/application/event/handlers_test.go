package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dormdesk/backend/internal/domain/billing"
	"github.com/dormdesk/backend/internal/domain/metering"
	"github.com/dormdesk/backend/internal/domain/payment"
	"github.com/dormdesk/backend/internal/domain/property"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/dormdesk/backend/internal/infrastructure/cache"
	infraevent "github.com/dormdesk/backend/internal/infrastructure/event"
	"github.com/dormdesk/backend/internal/infrastructure/notification"
	"github.com/dormdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	bangkok, _ = time.LoadLocation("Asia/Bangkok")
	january    = valueobject.MustParseMonth("2025-01")
)

type world struct {
	tenant *property.Tenant
	room   *property.Room
	bill   *billing.Bill
}

func newWorld() *world {
	tenant := &property.Tenant{TenantProfile: property.TenantProfile{Name: "Somchai", Email: "somchai@example.com"}}
	tenant.ID = uuid.New()
	room := &property.Room{Number: "101"}
	room.ID = uuid.New()
	bill := &billing.Bill{
		RoomID:      room.ID,
		TenantID:    tenant.ID,
		Month:       january,
		TotalAmount: decimal.RequireFromString("6300"),
		DueDate:     time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC),
		Status:      billing.BillStatusUnpaid,
	}
	bill.ID = uuid.New()
	return &world{tenant: tenant, room: room, bill: bill}
}

type tenantsOf struct{ w *world }

func (t tenantsOf) FindByID(ctx context.Context, id uuid.UUID) (*property.Tenant, error) {
	if id == t.w.tenant.ID {
		return t.w.tenant, nil
	}
	return nil, nil
}

type roomsOf struct{ w *world }

func (r roomsOf) FindByID(ctx context.Context, id uuid.UUID) (*property.Room, error) {
	if id == r.w.room.ID {
		return r.w.room, nil
	}
	return nil, nil
}

type billsOf struct{ w *world }

func (b billsOf) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	if id == b.w.bill.ID {
		return b.w.bill, nil
	}
	return nil, nil
}

func (w *world) issuedEvent() *billing.BillEvent {
	return billing.NewBillEvent(billing.EventTypeBillIssued, w.bill)
}

func (w *world) paymentEvent(eventType string) *payment.PaymentEvent {
	verified := time.Date(2025, 2, 3, 3, 0, 0, 0, time.UTC)
	return &payment.PaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, payment.AggregateTypePayment, uuid.New()),
		PaymentID:       uuid.New(),
		BillID:          w.bill.ID,
		TenantID:        w.tenant.ID,
		Amount:          w.bill.TotalAmount,
		Method:          payment.MethodQR,
		VerifiedAt:      &verified,
		RejectReason:    "amount does not match",
	}
}

type recordingMailer struct {
	sent []notification.Email
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg notification.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type recordingWebhook struct {
	posted []notification.ChatMessage
	err    error
}

func (w *recordingWebhook) Post(ctx context.Context, msg notification.ChatMessage) error {
	if w.err != nil {
		return w.err
	}
	w.posted = append(w.posted, msg)
	return nil
}

type failureCounter map[string]int

func (f failureCounter) RecordNotificationFailed(ctx context.Context, channel string) {
	f[channel]++
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordReading(ctx context.Context) { m.Called() }
func (m *mockRecorder) RecordBillGenerated(ctx context.Context, total decimal.Decimal) {
	m.Called(total.String())
}
func (m *mockRecorder) RecordPaymentSubmitted(ctx context.Context) { m.Called() }
func (m *mockRecorder) RecordPaymentVerified(ctx context.Context, outcome string, amount decimal.Decimal) {
	m.Called(outcome, amount.String())
}

func newNotificationHandler(w *world) (*NotificationHandler, *recordingMailer, *recordingWebhook, failureCounter) {
	mailer := &recordingMailer{}
	hook := &recordingWebhook{}
	failures := failureCounter{}
	h := NewNotificationHandler(tenantsOf{w}, roomsOf{w}, billsOf{w}, mailer, hook, failures, bangkok, zap.NewNop())
	return h, mailer, hook, failures
}

func TestMetricsHandler_Handle(t *testing.T) {
	w := newWorld()
	reading := &metering.MeterReadingRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(metering.EventTypeMeterReadingRecorded, metering.AggregateTypeMeterReading, uuid.New()),
	}

	rec := &mockRecorder{}
	rec.On("RecordReading").Once()
	rec.On("RecordBillGenerated", "6300").Once()
	rec.On("RecordPaymentSubmitted").Once()
	rec.On("RecordPaymentVerified", telemetry.OutcomeApproved, "6300").Once()
	rec.On("RecordPaymentVerified", telemetry.OutcomeRejected, "6300").Once()

	h := NewMetricsHandler(rec)
	ctx := context.Background()
	events := []shared.DomainEvent{
		reading,
		w.issuedEvent(),
		billing.NewBillEvent(billing.EventTypeBillPaid, w.bill),
		w.paymentEvent(payment.EventTypePaymentSubmitted),
		w.paymentEvent(payment.EventTypePaymentApproved),
		w.paymentEvent(payment.EventTypePaymentRejected),
	}
	for _, e := range events {
		require.NoError(t, h.Handle(ctx, e))
	}

	rec.AssertExpectations(t)
	assert.Contains(t, h.EventTypes(), billing.EventTypeBillIssued)
	assert.NotContains(t, h.EventTypes(), billing.EventTypeBillPaid)
}

func TestNotificationHandler_BillIssued(t *testing.T) {
	w := newWorld()
	h, mailer, _, _ := newNotificationHandler(w)

	require.NoError(t, h.Handle(context.Background(), w.issuedEvent()))

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "somchai@example.com", msg.ToAddress)
	assert.Equal(t, "Somchai", msg.ToName)
	assert.Equal(t, "Bill for 2025-01: 6300.00", msg.Subject)
	assert.Contains(t, msg.Text, "room 101")
	assert.Contains(t, msg.Text, "Due date: 5 Feb 2025")
	assert.Contains(t, msg.Text, "upload your payment slip")
}

func TestNotificationHandler_PaymentVerified(t *testing.T) {
	w := newWorld()
	h, mailer, hook, _ := newNotificationHandler(w)
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, w.paymentEvent(payment.EventTypePaymentApproved)))
	require.NoError(t, h.Handle(ctx, w.paymentEvent(payment.EventTypePaymentRejected)))

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "Payment received for 2025-01", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].Text, "Verified on 3 Feb 2025")
	assert.Equal(t, "Payment slip for 2025-01 was rejected", mailer.sent[1].Subject)
	assert.Contains(t, mailer.sent[1].Text, "Reason: amount does not match")
	assert.Empty(t, hook.posted)
}

func TestNotificationHandler_PaymentSubmittedPostsWebhook(t *testing.T) {
	w := newWorld()
	h, mailer, hook, _ := newNotificationHandler(w)

	require.NoError(t, h.Handle(context.Background(), w.paymentEvent(payment.EventTypePaymentSubmitted)))

	assert.Empty(t, mailer.sent)
	require.Len(t, hook.posted, 1)
	assert.Contains(t, hook.posted[0].Text, "Room 101 submitted a payment slip for 2025-01 (6300.00)")
	assert.Equal(t, "101", hook.posted[0].Fields["room"])
}

func TestNotificationHandler_Failures(t *testing.T) {
	t.Run("mailer error is counted and returned", func(t *testing.T) {
		w := newWorld()
		h, mailer, _, failures := newNotificationHandler(w)
		mailer.err = errors.New("sendgrid down")

		err := h.Handle(context.Background(), w.issuedEvent())

		assert.EqualError(t, err, "sendgrid down")
		assert.Equal(t, 1, failures[ChannelEmail])
	})

	t.Run("webhook error is counted and returned", func(t *testing.T) {
		w := newWorld()
		h, _, hook, failures := newNotificationHandler(w)
		hook.err = errors.New("timeout")

		err := h.Handle(context.Background(), w.paymentEvent(payment.EventTypePaymentSubmitted))

		assert.Error(t, err)
		assert.Equal(t, 1, failures[ChannelWebhook])
	})

	t.Run("tenant without email is skipped", func(t *testing.T) {
		w := newWorld()
		w.tenant.Email = ""
		h, mailer, _, failures := newNotificationHandler(w)

		require.NoError(t, h.Handle(context.Background(), w.issuedEvent()))
		assert.Empty(t, mailer.sent)
		assert.Empty(t, failures)
	})

	t.Run("missing bill", func(t *testing.T) {
		w := newWorld()
		h, _, _, _ := newNotificationHandler(w)
		ev := w.paymentEvent(payment.EventTypePaymentApproved)
		ev.BillID = uuid.New()

		err := h.Handle(context.Background(), ev)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeNotFound, de.Code)
	})
}

func TestRelayHandler_PublishesEnvelope(t *testing.T) {
	w := newWorld()
	relay := cache.NewMemoryRelay(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan infraevent.Envelope, 1)
	go func() { _ = relay.Subscribe(ctx, func(env infraevent.Envelope) { received <- env }) }()
	require.Eventually(t, func() bool { return relay.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	h := NewRelayHandler(relay)
	assert.Empty(t, h.EventTypes())
	ev := w.paymentEvent(payment.EventTypePaymentApproved)
	require.NoError(t, h.Handle(ctx, ev))

	env := <-received
	assert.Equal(t, ev.EventID(), env.ID)
	assert.Equal(t, payment.EventTypePaymentApproved, env.Type)
	require.NotNil(t, env.TenantID)
	assert.Equal(t, w.tenant.ID, *env.TenantID)
	assert.True(t, env.VisibleTo(false, w.tenant.ID))
	assert.False(t, env.VisibleTo(false, uuid.New()))
}
