package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dormdesk/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThresh = 200 * time.Millisecond

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// RegisterDBTracing installs the otelgorm plugin plus callbacks that tag
// spans with table, row count and a slow_query flag. Query variables are
// never recorded since they carry tenant data.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}

	thresh := cfg.DBSlowQueryThresh
	if thresh <= 0 {
		thresh = defaultSlowQueryThresh
	}
	if err := registerSpanCallbacks(db, thresh); err != nil {
		return err
	}

	logger.Info("Database tracing enabled", zap.Duration("slow_query_threshold", thresh))
	return nil
}

func registerSpanCallbacks(db *gorm.DB, thresh time.Duration) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartTimeKey, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSpan(tx, thresh) }

	cb := db.Callback()
	steps := []struct {
		op       string
		register func() error
	}{
		{"create", func() error {
			if err := cb.Create().Before("gorm:create").Register("dorm_timing:before_create", before); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("dorm_timing:after_create", after)
		}},
		{"query", func() error {
			if err := cb.Query().Before("gorm:query").Register("dorm_timing:before_query", before); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("dorm_timing:after_query", after)
		}},
		{"update", func() error {
			if err := cb.Update().Before("gorm:update").Register("dorm_timing:before_update", before); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("dorm_timing:after_update", after)
		}},
		{"delete", func() error {
			if err := cb.Delete().Before("gorm:delete").Register("dorm_timing:before_delete", before); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("dorm_timing:after_delete", after)
		}},
		{"row", func() error {
			if err := cb.Row().Before("gorm:row").Register("dorm_timing:before_row", before); err != nil {
				return err
			}
			return cb.Row().After("gorm:row").Register("dorm_timing:after_row", after)
		}},
		{"raw", func() error {
			if err := cb.Raw().Before("gorm:raw").Register("dorm_timing:before_raw", before); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register("dorm_timing:after_raw", after)
		}},
	}
	for _, s := range steps {
		if err := s.register(); err != nil {
			return fmt.Errorf("register %s callbacks: %w", s.op, err)
		}
	}
	return nil
}

func annotateSpan(db *gorm.DB, thresh time.Duration) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > thresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
