package cache

import (
	"context"
	"testing"
	"time"

	"github.com/dormdesk/backend/internal/infrastructure/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRelay_FansOut(t *testing.T) {
	relay := NewMemoryRelay(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, second := &collector{}, &collector{}
	go func() { _ = relay.Subscribe(ctx, first.add) }()
	go func() { _ = relay.Subscribe(ctx, second.add) }()
	require.Eventually(t, func() bool { return relay.Subscribers() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, relay.Publish(ctx, testEnvelope("BillIssued", nil)))

	assert.Len(t, first.all(), 1)
	assert.Len(t, second.all(), 1)
}

func TestMemoryRelay_UnsubscribesOnCancel(t *testing.T) {
	relay := NewMemoryRelay(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- relay.Subscribe(ctx, func(event.Envelope) {}) }()
	require.Eventually(t, func() bool { return relay.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 0, relay.Subscribers())
}

func TestMemoryRelay_CloseEndsSubscriptions(t *testing.T) {
	relay := NewMemoryRelay(nil)

	done := make(chan error, 1)
	go func() { done <- relay.Subscribe(context.Background(), func(event.Envelope) {}) }()
	require.Eventually(t, func() bool { return relay.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, relay.Close())
	require.NoError(t, relay.Close())
	assert.NoError(t, <-done)
}

func TestMemoryRelay_RecoversFromPanickingSubscriber(t *testing.T) {
	relay := NewMemoryRelay(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := &collector{}
	go func() { _ = relay.Subscribe(ctx, func(event.Envelope) { panic("boom") }) }()
	go func() { _ = relay.Subscribe(ctx, got.add) }()
	require.Eventually(t, func() bool { return relay.Subscribers() == 2 }, time.Second, 5*time.Millisecond)

	assert.NoError(t, relay.Publish(ctx, testEnvelope("BillIssued", nil)))
	assert.Len(t, got.all(), 1)
}
