package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dormdesk/backend/internal/domain/shared/valueobject"
	"github.com/dormdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// JobSubmitter is the part of Scheduler the trigger needs
type JobSubmitter interface {
	SubmitBillRun(month string) error
	SubmitContractExpiry() error
}

// CronTrigger submits the daily jobs at a fixed wall-clock time
type CronTrigger struct {
	submitter     JobSubmitter
	logger        *zap.Logger
	loc           *time.Location
	hour          int
	minute        int
	billRunDay    int
	checkInterval time.Duration
	now           func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewCronTrigger creates a trigger for cfg.DailyCronSchedule evaluated in loc
func NewCronTrigger(cfg config.SchedulerConfig, submitter JobSubmitter, loc *time.Location, logger *zap.Logger) (*CronTrigger, error) {
	hour, minute, err := ParseCronSchedule(cfg.DailyCronSchedule)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CronTrigger{
		submitter:     submitter,
		logger:        logger,
		loc:           loc,
		hour:          hour,
		minute:        minute,
		billRunDay:    cfg.BillRunDay,
		checkInterval: time.Minute,
		now:           time.Now,
	}, nil
}

// ParseCronSchedule extracts hour and minute from "minute hour * * *". An
// empty expression means 02:00.
func ParseCronSchedule(expr string) (hour, minute int, err error) {
	parts := strings.Fields(expr)
	if len(parts) == 0 {
		return 2, 0, nil
	}
	if len(parts) != 5 {
		return 0, 0, fmt.Errorf("%w: %q needs five fields", ErrInvalidCronSchedule, expr)
	}
	for _, p := range parts[2:] {
		if p != "*" {
			return 0, 0, fmt.Errorf("%w: %q only daily schedules are supported", ErrInvalidCronSchedule, expr)
		}
	}
	if minute, err = strconv.Atoi(parts[0]); err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute %q", ErrInvalidCronSchedule, parts[0])
	}
	if hour, err = strconv.Atoi(parts[1]); err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour %q", ErrInvalidCronSchedule, parts[1])
	}
	return hour, minute, nil
}

// Start starts the trigger loop
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return nil
	}
	c.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Int("hour", c.hour),
		zap.Int("minute", c.minute),
		zap.Int("bill_run_day", c.billRunDay),
		zap.String("timezone", c.loc.String()),
	)
	return nil
}

// Stop stops the trigger loop
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger()
		}
	}
}

// checkAndTrigger submits the day's jobs once the configured time is reached
func (c *CronTrigger) checkAndTrigger() {
	now := c.now().In(c.loc)
	today := now.Format("2006-01-02")

	c.mu.Lock()
	if c.lastRunDate == today {
		c.mu.Unlock()
		return
	}
	if now.Hour() != c.hour || now.Minute() != c.minute {
		c.mu.Unlock()
		return
	}
	c.lastRunDate = today
	c.mu.Unlock()

	c.trigger(now)
}

func (c *CronTrigger) trigger(now time.Time) {
	if err := c.submitter.SubmitContractExpiry(); err != nil {
		c.logger.Error("Failed to submit contract expiry", zap.Error(err))
	}

	if c.billRunDay == 0 || now.Day() != c.billRunDay {
		return
	}
	month := valueobject.MonthOf(now).Prev().String()
	c.logger.Info("Triggering monthly bill run", zap.String("month", month))
	if err := c.submitter.SubmitBillRun(month); err != nil {
		c.logger.Error("Failed to submit bill run", zap.String("month", month), zap.Error(err))
	}
}
