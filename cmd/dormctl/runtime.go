package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	billingapp "github.com/dormdesk/backend/internal/application/billing"
	eventapp "github.com/dormdesk/backend/internal/application/event"
	propertyapp "github.com/dormdesk/backend/internal/application/property"
	"github.com/dormdesk/backend/internal/infrastructure/cache"
	"github.com/dormdesk/backend/internal/infrastructure/config"
	"github.com/dormdesk/backend/internal/infrastructure/event"
	"github.com/dormdesk/backend/internal/infrastructure/logger"
	"github.com/dormdesk/backend/internal/infrastructure/notification"
	"github.com/dormdesk/backend/internal/infrastructure/persistence"
	"github.com/dormdesk/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// runtime holds the services a batch command needs. Events raised by the
// command reach the same notification and relay handlers as in the server.
type runtime struct {
	log       *zap.Logger
	bills     *billingapp.BillService
	contracts *propertyapp.ContractService
	closers   []func() error
}

func newRuntime(opts *rootOptions) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(&logger.Config{Level: opts.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return nil, err
	}
	rt := &runtime{log: log}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(opts.logLevel), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, db.Close)

	// metrics are not exported from a one-shot command
	metrics, err := telemetry.NewBusinessMetrics(noop.NewMeterProvider().Meter("dormctl"))
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	relay, err := cache.NewRelayFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithChannel(cfg.Realtime.Channel),
	).CreateRelay()
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.closers = append(rt.closers, relay.Close)

	loc := cfg.App.Location()
	rooms := persistence.NewGormRoomRepository(db.DB)
	tenants := persistence.NewGormTenantRepository(db.DB)
	contracts := persistence.NewGormContractRepository(db.DB)
	readings := persistence.NewGormMeterReadingRepository(db.DB)
	bills := persistence.NewGormBillRepository(db.DB)
	payments := persistence.NewGormPaymentRepository(db.DB)

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(eventapp.NewNotificationHandler(tenants, rooms, bills,
		notification.NewMailer(cfg.Notification, cfg.App.Name, log),
		notification.NewWebhook(cfg.Notification, log),
		metrics, loc, log))
	bus.Subscribe(eventapp.NewRelayHandler(relay))
	if err := bus.Start(context.Background()); err != nil {
		_ = rt.Close()
		return nil, err
	}

	rt.bills = billingapp.NewBillService(bills, payments, rooms, tenants, readings,
		persistence.NewTxManager(db.DB), bus, billingapp.Settings{DueDay: cfg.Billing.DueDay, Location: loc})
	rt.contracts = propertyapp.NewContractService(contracts, tenants, rooms, bus)
	return rt, nil
}

// Close releases everything newRuntime opened, last first
func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	logger.Sync(rt.log)
	return errors.Join(errs...)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
