package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dormdesk/backend/internal/infrastructure/config"
	"github.com/dormdesk/backend/internal/infrastructure/event"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func testEnvelope(eventType string, tenantID *uuid.UUID) event.Envelope {
	return event.Envelope{
		ID:            uuid.New(),
		Type:          eventType,
		AggregateType: "Bill",
		AggregateID:   uuid.New(),
		TenantID:      tenantID,
		OccurredAt:    time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
		Payload:       json.RawMessage(`{"month":"2025-01"}`),
	}
}

type collector struct {
	mu   sync.Mutex
	envs []event.Envelope
}

func (c *collector) add(env event.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.envs = append(c.envs, env)
}

func (c *collector) all() []event.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event.Envelope(nil), c.envs...)
}

func TestRedisRelay_PublishSubscribe(t *testing.T) {
	mr, client := setupTestRedis(t)
	relay := NewRedisRelay(client, WithRelayChannel("test:events"), WithRelayLogger(zap.NewNop()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := &collector{}
	done := make(chan error, 1)
	go func() { done <- relay.Subscribe(ctx, got.add) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("test:events")["test:events"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	tenantID := uuid.New()
	sent := testEnvelope("PaymentApproved", &tenantID)
	require.NoError(t, relay.Publish(ctx, sent))

	require.Eventually(t, func() bool { return len(got.all()) == 1 }, 2*time.Second, 10*time.Millisecond)
	received := got.all()[0]
	assert.Equal(t, sent.ID, received.ID)
	assert.Equal(t, "PaymentApproved", received.Type)
	require.NotNil(t, received.TenantID)
	assert.Equal(t, tenantID, *received.TenantID)
	assert.JSONEq(t, `{"month":"2025-01"}`, string(received.Payload))

	require.NoError(t, relay.Close())
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop")
	}
}

func TestRedisRelay_SkipsUndecodableMessages(t *testing.T) {
	mr, client := setupTestRedis(t)
	relay := NewRedisRelay(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := &collector{}
	go func() { _ = relay.Subscribe(ctx, got.add) }()
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(DefaultChannel)[DefaultChannel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	mr.Publish(DefaultChannel, "not json")
	mr.Publish(DefaultChannel, `{"id":"`+uuid.NewString()+`"}`)
	require.NoError(t, relay.Publish(ctx, testEnvelope("BillIssued", nil)))

	require.Eventually(t, func() bool { return len(got.all()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "BillIssued", got.all()[0].Type)
}

func TestRedisRelay_SecondSubscribeRejected(t *testing.T) {
	mr, client := setupTestRedis(t)
	relay := NewRedisRelay(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = relay.Subscribe(ctx, func(event.Envelope) {}) }()
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(DefaultChannel)[DefaultChannel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	err := relay.Subscribe(ctx, func(event.Envelope) {})
	assert.ErrorContains(t, err, "already running")
}

func TestRedisRelay_CallbackPanicDoesNotStopSubscription(t *testing.T) {
	mr, client := setupTestRedis(t)
	relay := NewRedisRelay(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := &collector{}
	go func() {
		_ = relay.Subscribe(ctx, func(env event.Envelope) {
			if env.Type == "Boom" {
				panic("boom")
			}
			got.add(env)
		})
	}()
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(DefaultChannel)[DefaultChannel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, relay.Publish(ctx, testEnvelope("Boom", nil)))
	require.NoError(t, relay.Publish(ctx, testEnvelope("BillIssued", nil)))

	require.Eventually(t, func() bool { return len(got.all()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRedisRelay_PublishFailsWhenServerDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	relay := NewRedisRelay(client)
	mr.Close()

	err := relay.Publish(context.Background(), testEnvelope("BillIssued", nil))
	assert.ErrorContains(t, err, "failed to publish event")
}

func TestRelayFactory_CreateRelay(t *testing.T) {
	t.Run("disabled redis gives memory relay", func(t *testing.T) {
		relay, err := NewRelayFactory(config.RedisConfig{Enabled: false}).CreateRelay()
		require.NoError(t, err)
		assert.IsType(t, &MemoryRelay{}, relay)
	})

	t.Run("reachable redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.RedisConfig{Enabled: true, Host: mr.Host(), Port: portOf(t, mr)}

		relay, err := NewRelayFactory(cfg, WithChannel("custom")).CreateRelay()
		require.NoError(t, err)
		defer relay.Close()

		redisRelay, ok := relay.(*RedisRelay)
		require.True(t, ok)
		assert.Equal(t, "custom", redisRelay.channel)
		assert.True(t, redisRelay.ownsClient)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}
		relay, err := NewRelayFactory(cfg).CreateRelay()
		require.NoError(t, err)
		assert.IsType(t, &MemoryRelay{}, relay)
	})

	t.Run("unreachable redis without fallback", func(t *testing.T) {
		cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}
		_, err := NewRelayFactory(cfg, WithInMemoryFallback(false)).CreateRelay()
		assert.ErrorContains(t, err, "failed to connect to Redis")
	})
}

func portOf(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return port
}
