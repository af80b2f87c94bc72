package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dormdesk/backend/internal/infrastructure/event"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisRelay implements Relay using Redis Pub/Sub
type RedisRelay struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	channel    string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// RedisRelayOption is a functional option for configuring the relay
type RedisRelayOption func(*RedisRelay)

// WithRelayChannel sets the Pub/Sub channel name
func WithRelayChannel(channel string) RedisRelayOption {
	return func(r *RedisRelay) {
		r.channel = channel
	}
}

// WithRelayLogger sets the logger for the relay
func WithRelayLogger(logger *zap.Logger) RedisRelayOption {
	return func(r *RedisRelay) {
		r.logger = logger
	}
}

// NewRedisRelay creates a relay on an existing client. The caller keeps
// ownership of the client.
func NewRedisRelay(client *redis.Client, opts ...RedisRelayOption) *RedisRelay {
	r := &RedisRelay{
		client:  client,
		channel: DefaultChannel,
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Publish sends an envelope to all subscribers
func (r *RedisRelay) Publish(ctx context.Context, env event.Envelope) error {
	data, err := env.Encode()
	if err != nil {
		return err
	}

	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		r.logger.Error("Failed to publish event",
			zap.String("channel", r.channel),
			zap.String("event_type", env.Type),
			zap.Error(err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	r.logger.Debug("Published event",
		zap.String("event_type", env.Type),
		zap.String("event_id", env.ID.String()),
		zap.String("channel", r.channel))
	return nil
}

// Subscribe listens on the channel until ctx is cancelled or Close is
// called. Only one subscription may run at a time.
func (r *RedisRelay) Subscribe(ctx context.Context, callback func(env event.Envelope)) error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	r.isRunning = true
	subCtx, cancel := context.WithCancel(ctx)
	r.cancelFn = cancel
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.isRunning = false
		r.mu.Unlock()
		r.markDone()
	}()

	pubsub := r.client.Subscribe(subCtx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	r.logger.Info("Subscribed to realtime channel", zap.String("channel", r.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			r.logger.Info("Realtime subscription stopped")
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				r.logger.Warn("Realtime channel closed")
				return nil
			}

			env, err := event.DecodeEnvelope([]byte(msg.Payload))
			if err != nil {
				r.logger.Error("Failed to decode event envelope",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}
			r.deliver(callback, env)
		}
	}
}

func (r *RedisRelay) deliver(callback func(event.Envelope), env event.Envelope) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Panic in realtime callback",
				zap.String("event_type", env.Type),
				zap.Any("panic", p))
		}
	}()
	callback(env)
}

func (r *RedisRelay) markDone() {
	r.doneOnce.Do(func() {
		close(r.doneCh)
	})
}

// Close stops a running subscription and closes the client when owned
func (r *RedisRelay) Close() error {
	r.mu.Lock()
	cancelFn := r.cancelFn
	r.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-r.doneCh:
		case <-time.After(defaultCloseTimeout):
			r.logger.Warn("Timeout waiting for subscription to stop")
		}
	}

	if r.ownsClient {
		return r.client.Close()
	}
	return nil
}

var _ Relay = (*RedisRelay)(nil)
