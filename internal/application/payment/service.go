// Package payment runs the slip verification workflow: a renter submits a
// slip for a bill and an admin approves or rejects it.
package payment

import (
	"context"
	"time"

	appshared "github.com/dormdesk/backend/internal/application/shared"
	"github.com/dormdesk/backend/internal/domain/billing"
	"github.com/dormdesk/backend/internal/domain/payment"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/dormdesk/backend/internal/infrastructure/logger"
	"github.com/dormdesk/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlipStore is the object storage holding slip images
type SlipStore interface {
	UploadURL(ctx context.Context, key, contentType string) (*storage.PresignedURL, error)
	DownloadURL(ctx context.Context, key string) (*storage.PresignedURL, error)
	Exists(ctx context.Context, key string) (bool, error)
	ObjectURL(key string) string
	KeyOf(objectURL string) (string, bool)
}

// Service handles payment submission and verification
type Service struct {
	paymentRepo payment.Repository
	billRepo    billing.BillRepository
	tx          appshared.TxManager
	slips       SlipStore
	events      shared.EventPublisher
	now         appshared.Clock
}

// NewService creates a new payment Service
func NewService(
	paymentRepo payment.Repository,
	billRepo billing.BillRepository,
	tx appshared.TxManager,
	slips SlipStore,
	events shared.EventPublisher,
) *Service {
	return &Service{
		paymentRepo: paymentRepo,
		billRepo:    billRepo,
		tx:          tx,
		slips:       slips,
		events:      events,
		now:         appshared.SystemClock,
	}
}

// RequestSlipUpload presigns a direct upload for a slip of an unpaid bill
func (s *Service) RequestSlipUpload(ctx context.Context, actor appshared.Actor, billID uuid.UUID, req SlipUploadRequest) (*SlipUploadResponse, error) {
	bill, err := s.loadBill(ctx, actor, billID)
	if err != nil {
		return nil, err
	}
	if !bill.Status.CanAttachSlip() {
		return nil, shared.NewInvalidStateError("Bill is already " + bill.Status.String())
	}

	key, err := storage.SlipKey(bill.ID, req.ContentType)
	if err != nil {
		return nil, err
	}
	signed, err := s.slips.UploadURL(ctx, key, req.ContentType)
	if err != nil {
		return nil, err
	}
	return &SlipUploadResponse{
		UploadURL: signed.URL,
		Method:    signed.Method,
		SlipURL:   s.slips.ObjectURL(key),
		Key:       key,
		ExpiresAt: signed.ExpiresAt,
	}, nil
}

// Submit records a slip for a bill: the payment is created pending and the
// bill moves to pending in the same transaction.
func (s *Service) Submit(ctx context.Context, actor appshared.Actor, req SubmitPaymentRequest) (*PaymentResponse, error) {
	if err := s.checkUploaded(ctx, req.SlipURL); err != nil {
		return nil, err
	}

	var (
		p    *payment.Payment
		bill *billing.Bill
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.loadBill(ctx, actor, req.BillID)
		if err != nil {
			return err
		}
		if err := bill.AttachSlip(req.SlipURL); err != nil {
			return err
		}

		amount := bill.GetTotalMoney()
		if req.Amount != nil {
			amount = valueobject.NewMoneyTHB(*req.Amount)
		}
		p, err = payment.NewPayment(bill.ID, bill.TenantID, amount, payment.Method(req.Method), req.SlipURL, actor.UID)
		if err != nil {
			return err
		}

		if err := s.paymentRepo.Create(ctx, p); err != nil {
			return err
		}
		return s.billRepo.SaveWithLock(ctx, bill)
	})
	if err != nil {
		return nil, err
	}

	appshared.PublishEvents(ctx, s.events, p, bill)
	resp := ToPaymentResponse(p)
	resp.BillStatus = bill.Status.String()
	return &resp, nil
}

// Approve accepts a pending payment and marks its bill paid
func (s *Service) Approve(ctx context.Context, id uuid.UUID, adminUID string) (*PaymentResponse, error) {
	return s.verify(ctx, id, func(p *payment.Payment, bill *billing.Bill, now time.Time) error {
		if err := p.Approve(now, adminUID); err != nil {
			return err
		}
		return bill.MarkPaid(now, adminUID)
	})
}

// Reject declines a pending payment and returns its bill to unpaid
func (s *Service) Reject(ctx context.Context, id uuid.UUID, adminUID string, req RejectPaymentRequest) (*PaymentResponse, error) {
	return s.verify(ctx, id, func(p *payment.Payment, bill *billing.Bill, now time.Time) error {
		if err := p.Reject(now, adminUID, req.Reason); err != nil {
			return err
		}
		return bill.RevertToUnpaid()
	})
}

func (s *Service) verify(ctx context.Context, id uuid.UUID, transition func(*payment.Payment, *billing.Bill, time.Time) error) (*PaymentResponse, error) {
	var (
		p    *payment.Payment
		bill *billing.Bill
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.load(ctx, id)
		if err != nil {
			return err
		}
		bill, err = s.billRepo.FindByID(ctx, p.BillID)
		if err != nil {
			return err
		}
		if bill == nil {
			return shared.NewNotFoundError("bill")
		}

		if err := transition(p, bill, s.now()); err != nil {
			return err
		}
		if err := s.paymentRepo.SaveWithLock(ctx, p); err != nil {
			return err
		}
		return s.billRepo.SaveWithLock(ctx, bill)
	})
	if err != nil {
		return nil, err
	}

	appshared.PublishEvents(ctx, s.events, p, bill)
	resp := ToPaymentResponse(p)
	resp.BillStatus = bill.Status.String()
	return &resp, nil
}

// Get retrieves a payment the actor may see, with a short-lived slip link
func (s *Service) Get(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessTenant(p.TenantID) {
		return nil, shared.NewNotFoundError("payment")
	}

	resp := ToPaymentResponse(p)
	if key, ok := s.slips.KeyOf(p.SlipURL); ok {
		signed, err := s.slips.DownloadURL(ctx, key)
		if err != nil {
			logger.FromContext(ctx).Warn("slip download link unavailable",
				zap.String("payment_id", p.ID.String()),
				zap.Error(err),
			)
		} else {
			resp.SlipViewURL = signed.URL
		}
	}
	return &resp, nil
}

// List retrieves payments, newest first; renters only see their own
func (s *Service) List(ctx context.Context, actor appshared.Actor, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	domainFilter, err := toDomainFilter(actor, filter)
	if err != nil {
		return nil, 0, err
	}
	domainFilter.Filter = filter.ToFilter("created_at")

	payments, err := s.paymentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.paymentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out, total, nil
}

// Summary returns counts and amounts per payment status
func (s *Service) Summary(ctx context.Context, actor appshared.Actor, filter PaymentListFilter) (*SummaryResponse, error) {
	domainFilter, err := toDomainFilter(actor, filter)
	if err != nil {
		return nil, err
	}
	totals, err := s.paymentRepo.Totals(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	resp := ToSummaryResponse(totals)
	return &resp, nil
}

func toDomainFilter(actor appshared.Actor, filter PaymentListFilter) (payment.Filter, error) {
	f := payment.Filter{BillID: filter.BillID, TenantID: filter.TenantID}
	if !actor.IsAdmin() {
		if actor.TenantID == nil {
			return f, shared.ErrForbidden
		}
		f.TenantID = actor.TenantID
	}
	if filter.Status != "" {
		status := payment.Status(filter.Status)
		if !status.IsValid() {
			return f, shared.NewValidationError("Invalid payment status: " + filter.Status)
		}
		f.Status = &status
	}
	return f, nil
}

// checkUploaded rejects slip URLs in our bucket whose object was never uploaded.
// URLs outside the bucket are stored as given.
func (s *Service) checkUploaded(ctx context.Context, slipURL string) error {
	key, ok := s.slips.KeyOf(slipURL)
	if !ok {
		return nil
	}
	exists, err := s.slips.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewValidationError("Slip file has not been uploaded")
	}
	return nil
}

func (s *Service) loadBill(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*billing.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil || !actor.CanAccessTenant(bill.TenantID) {
		return nil, shared.NewNotFoundError("bill")
	}
	return bill, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	p, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, shared.NewNotFoundError("payment")
	}
	return p, nil
}
