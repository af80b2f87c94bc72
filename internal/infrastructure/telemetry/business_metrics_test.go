package telemetry

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return bm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func intSum(t *testing.T, data metricdata.Aggregation, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func floatSum(t *testing.T, data metricdata.Aggregation) float64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[float64])
	require.True(t, ok, "expected float64 sum, got %T", data)
	var total float64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := NewBusinessMetrics(nil)

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_Counters(t *testing.T) {
	bm, reader := newTestMetrics(t)
	ctx := context.Background()

	bm.RecordReading(ctx)
	bm.RecordReading(ctx)
	bm.RecordBillGenerated(ctx, decimal.RequireFromString("6300"))
	bm.RecordBillGenerated(ctx, decimal.RequireFromString("4500.50"))
	bm.RecordPaymentSubmitted(ctx)
	bm.RecordPaymentVerified(ctx, OutcomeApproved, decimal.RequireFromString("6300"))
	bm.RecordPaymentVerified(ctx, OutcomeRejected, decimal.RequireFromString("4500.50"))
	bm.RecordNotificationFailed(ctx, "email")

	got := collect(t, reader)

	assert.Equal(t, int64(2), intSum(t, got["dorm_meter_readings_total"]))
	assert.Equal(t, int64(2), intSum(t, got["dorm_bills_generated_total"]))
	assert.InDelta(t, 10800.50, floatSum(t, got["dorm_billed_amount_total"]), 0.001)
	assert.Equal(t, int64(1), intSum(t, got["dorm_payments_submitted_total"]))
	assert.Equal(t, int64(1), intSum(t, got["dorm_payments_verified_total"], attribute.String("outcome", OutcomeApproved)))
	assert.Equal(t, int64(1), intSum(t, got["dorm_payments_verified_total"], attribute.String("outcome", OutcomeRejected)))
	assert.InDelta(t, 6300, floatSum(t, got["dorm_collected_amount_total"]), 0.001)
	assert.Equal(t, int64(1), intSum(t, got["dorm_notifications_failed_total"], attribute.String("channel", "email")))
}
