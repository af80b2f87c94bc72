// Package cache holds the Redis-backed pieces of the server. Its main job is
// the realtime relay: committed domain events are published on a pub/sub
// channel so that every server instance can push them to its SSE clients.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dormdesk/backend/internal/infrastructure/config"
	"github.com/dormdesk/backend/internal/infrastructure/event"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the pub/sub channel carrying event envelopes
const DefaultChannel = "dormdesk:events"

const (
	defaultCloseTimeout = 5 * time.Second
	pingTimeout         = 5 * time.Second
)

// Relay moves event envelopes between server instances
type Relay interface {
	// Publish sends an envelope to every subscriber
	Publish(ctx context.Context, env event.Envelope) error
	// Subscribe blocks, invoking callback for each envelope until ctx is
	// cancelled or the relay is closed
	Subscribe(ctx context.Context, callback func(env event.Envelope)) error
	Close() error
}

// RelayFactory creates relays based on configuration
type RelayFactory struct {
	redisConfig           config.RedisConfig
	channel               string
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RelayFactoryOption is a functional option for configuring the factory
type RelayFactoryOption func(*RelayFactory)

// WithLogger sets the logger for the factory and the relays it creates
func WithLogger(logger *zap.Logger) RelayFactoryOption {
	return func(f *RelayFactory) {
		f.logger = logger
	}
}

// WithChannel overrides DefaultChannel
func WithChannel(channel string) RelayFactoryOption {
	return func(f *RelayFactory) {
		if channel != "" {
			f.channel = channel
		}
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory relay. Default is true.
func WithInMemoryFallback(allow bool) RelayFactoryOption {
	return func(f *RelayFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRelayFactory creates a new factory
func NewRelayFactory(cfg config.RedisConfig, opts ...RelayFactoryOption) *RelayFactory {
	f := &RelayFactory{
		redisConfig:           cfg,
		channel:               DefaultChannel,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRelay returns a Redis relay when Redis is enabled and reachable,
// and an in-memory relay otherwise
func (f *RelayFactory) CreateRelay() (Relay, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, realtime events stay in this process")
		return NewMemoryRelay(f.logger), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		f.logger.Warn("Redis unreachable, falling back to in-memory relay",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err))
		return NewMemoryRelay(f.logger), nil
	}

	f.logger.Info("Realtime relay using Redis",
		zap.String("addr", f.redisConfig.Addr()),
		zap.String("channel", f.channel))
	relay := NewRedisRelay(client, WithRelayChannel(f.channel), WithRelayLogger(f.logger))
	relay.ownsClient = true
	return relay, nil
}
