package scheduler

import (
	"context"
	"fmt"

	appbilling "github.com/dormdesk/backend/internal/application/billing"
	appproperty "github.com/dormdesk/backend/internal/application/property"
	"go.uber.org/zap"
)

// BillRunner is implemented by billing.BillService
type BillRunner interface {
	RunMonthly(ctx context.Context, req appbilling.RunMonthlyRequest) (*appbilling.RunResult, error)
}

// ContractExpirer is implemented by property.ContractService
type ContractExpirer interface {
	ExpireDue(ctx context.Context) (appproperty.ExpireResult, error)
}

// Executor runs jobs against the application services
type Executor struct {
	bills     BillRunner
	contracts ContractExpirer
	logger    *zap.Logger
}

// NewExecutor creates a new Executor
func NewExecutor(bills BillRunner, contracts ContractExpirer, logger *zap.Logger) *Executor {
	return &Executor{bills: bills, contracts: contracts, logger: logger}
}

// Execute implements JobExecutor
func (e *Executor) Execute(ctx context.Context, job *Job) error {
	switch job.Kind {
	case JobKindBillRun:
		return e.billRun(ctx, job)
	case JobKindContractExpiry:
		return e.expireContracts(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobKind, job.Kind)
	}
}

// billRun bills every occupied room. Rooms the run could not bill are
// reported but do not fail the job; a rerun skips the rooms already billed.
func (e *Executor) billRun(ctx context.Context, job *Job) error {
	res, err := e.bills.RunMonthly(ctx, appbilling.RunMonthlyRequest{Month: job.Month})
	if err != nil {
		return fmt.Errorf("bill run %s: %w", job.Month, err)
	}

	for _, f := range res.Failures {
		e.logger.Warn("Room not billed",
			zap.String("month", res.Month),
			zap.String("room_id", f.RoomID.String()),
			zap.String("room_number", f.RoomNumber),
			zap.String("reason", f.Error))
	}
	e.logger.Info("Bill run finished",
		zap.String("month", res.Month),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", len(res.Failures)))
	return nil
}

func (e *Executor) expireContracts(ctx context.Context) error {
	res, err := e.contracts.ExpireDue(ctx)
	e.logger.Info("Contract expiry finished",
		zap.Int("expired", res.Expired),
		zap.Int("failed", res.Failed))
	if err != nil {
		return fmt.Errorf("expire contracts: %w", err)
	}
	return nil
}
