package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appbilling "github.com/dormdesk/backend/internal/application/billing"
	appproperty "github.com/dormdesk/backend/internal/application/property"
	"github.com/dormdesk/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockBillRunner struct {
	mock.Mock
}

func (m *mockBillRunner) RunMonthly(ctx context.Context, req appbilling.RunMonthlyRequest) (*appbilling.RunResult, error) {
	args := m.Called(req.Month)
	if r := args.Get(0); r != nil {
		return r.(*appbilling.RunResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockExpirer struct {
	mock.Mock
}

func (m *mockExpirer) ExpireDue(ctx context.Context) (appproperty.ExpireResult, error) {
	args := m.Called()
	return args.Get(0).(appproperty.ExpireResult), args.Error(1)
}

// countingExecutor fails the first failures calls and records every run
type countingExecutor struct {
	mu       sync.Mutex
	failures int
	runs     []JobKind
	done     chan *Job
}

func (e *countingExecutor) Execute(ctx context.Context, job *Job) error {
	e.mu.Lock()
	e.runs = append(e.runs, job.Kind)
	fail := e.failures > 0
	if fail {
		e.failures--
	}
	e.mu.Unlock()
	if fail {
		return errors.New("boom")
	}
	e.done <- job
	return nil
}

type recordingSubmitter struct {
	billRuns []string
	expiries int
}

func (s *recordingSubmitter) SubmitBillRun(month string) error {
	s.billRuns = append(s.billRuns, month)
	return nil
}

func (s *recordingSubmitter) SubmitContractExpiry() error {
	s.expiries++
	return nil
}

func testSchedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:           true,
		DailyCronSchedule: "30 1 * * *",
		BillRunDay:        1,
		Workers:           2,
		JobTimeout:        time.Second,
		RetryAttempts:     2,
		RetryDelay:        10 * time.Millisecond,
	}
}

func TestJob_Lifecycle(t *testing.T) {
	job := NewJob(JobKindBillRun, "2025-01", 1)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)

	job.Fail("db down")
	assert.Equal(t, "db down", job.Error)
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Minute)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	require.NotNil(t, job.NextRetryAt)

	job.Fail("db down")
	assert.False(t, job.ShouldRetry())

	job.Complete()
	assert.Equal(t, JobStatusSuccess, job.Status)
}

func TestScheduler_SubmitRequiresRunning(t *testing.T) {
	s := NewScheduler(testSchedulerConfig(), &countingExecutor{}, zap.NewNop())
	assert.ErrorIs(t, s.SubmitContractExpiry(), ErrSchedulerNotRunning)
	assert.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_RunsAndRetries(t *testing.T) {
	exec := &countingExecutor{failures: 1, done: make(chan *Job, 2)}
	s := NewScheduler(testSchedulerConfig(), exec, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	require.NoError(t, s.SubmitBillRun("2025-01"))

	select {
	case job := <-exec.done:
		assert.Equal(t, "2025-01", job.Month)
		assert.Equal(t, 1, job.RetryCount)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not complete after retry")
	}

	exec.mu.Lock()
	assert.Equal(t, []JobKind{JobKindBillRun, JobKindBillRun}, exec.runs)
	exec.mu.Unlock()
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(testSchedulerConfig(), &countingExecutor{}, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	assert.ErrorIs(t, s.SubmitBillRun("2025-01"), ErrSchedulerNotRunning)
}

func TestParseCronSchedule(t *testing.T) {
	tests := []struct {
		name       string
		expr       string
		wantHour   int
		wantMinute int
		wantErr    bool
	}{
		{name: "default", expr: "", wantHour: 2},
		{name: "half past one", expr: "30 1 * * *", wantHour: 1, wantMinute: 30},
		{name: "extra whitespace", expr: "  15   4   *   *   *  ", wantHour: 4, wantMinute: 15},
		{name: "midnight", expr: "0 0 * * *"},
		{name: "too few fields", expr: "0 2", wantErr: true},
		{name: "not daily", expr: "0 2 1 * *", wantErr: true},
		{name: "bad hour", expr: "0 24 * * *", wantErr: true},
		{name: "bad minute", expr: "x 2 * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, minute, err := ParseCronSchedule(tt.expr)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCronSchedule)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHour, hour)
			assert.Equal(t, tt.wantMinute, minute)
		})
	}
}

func TestCronTrigger_CheckAndTrigger(t *testing.T) {
	bangkok, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)

	sub := &recordingSubmitter{}
	trigger, err := NewCronTrigger(testSchedulerConfig(), sub, bangkok, zap.NewNop())
	require.NoError(t, err)

	clock := time.Date(2025, 3, 1, 1, 29, 0, 0, bangkok)
	trigger.now = func() time.Time { return clock }

	trigger.checkAndTrigger()
	assert.Zero(t, sub.expiries, "before the scheduled minute")

	// 18:30 UTC on the last day of February is 01:30 on the 1st in Bangkok
	clock = time.Date(2025, 2, 28, 18, 30, 0, 0, time.UTC)
	trigger.checkAndTrigger()
	trigger.checkAndTrigger()
	assert.Equal(t, 1, sub.expiries, "runs once per day")
	assert.Equal(t, []string{"2025-02"}, sub.billRuns)

	clock = time.Date(2025, 3, 2, 1, 30, 0, 0, bangkok)
	trigger.checkAndTrigger()
	assert.Equal(t, 2, sub.expiries)
	assert.Len(t, sub.billRuns, 1, "bill run only on the bill run day")
}

func TestNewCronTrigger_InvalidSchedule(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.DailyCronSchedule = "every day"
	_, err := NewCronTrigger(cfg, &recordingSubmitter{}, nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidCronSchedule)
}

func TestExecutor_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("bill run with room failures succeeds", func(t *testing.T) {
		bills := &mockBillRunner{}
		bills.On("RunMonthly", "2025-01").Return(&appbilling.RunResult{
			Month:   "2025-01",
			Created: 3,
			Failures: []appbilling.RunFailure{
				{RoomID: uuid.New(), RoomNumber: "104", Error: "no meter reading for 2025-01"},
			},
		}, nil).Once()

		e := NewExecutor(bills, &mockExpirer{}, zap.NewNop())
		assert.NoError(t, e.Execute(ctx, NewJob(JobKindBillRun, "2025-01", 0)))
		bills.AssertExpectations(t)
	})

	t.Run("bill run error fails the job", func(t *testing.T) {
		bills := &mockBillRunner{}
		bills.On("RunMonthly", "2025-01").Return(nil, errors.New("db down")).Once()

		e := NewExecutor(bills, &mockExpirer{}, zap.NewNop())
		err := e.Execute(ctx, NewJob(JobKindBillRun, "2025-01", 0))
		assert.EqualError(t, err, "bill run 2025-01: db down")
	})

	t.Run("contract expiry", func(t *testing.T) {
		contracts := &mockExpirer{}
		contracts.On("ExpireDue").Return(appproperty.ExpireResult{Expired: 2, Failed: 1}, errors.New("save failed")).Once()

		e := NewExecutor(&mockBillRunner{}, contracts, zap.NewNop())
		err := e.Execute(ctx, NewJob(JobKindContractExpiry, "", 0))
		assert.ErrorContains(t, err, "expire contracts")
		contracts.AssertExpectations(t)
	})

	t.Run("unknown kind", func(t *testing.T) {
		e := NewExecutor(&mockBillRunner{}, &mockExpirer{}, zap.NewNop())
		assert.ErrorIs(t, e.Execute(ctx, &Job{Kind: "REPORT"}), ErrUnknownJobKind)
	})
}
