package cache

import (
	"context"
	"sync"

	"github.com/dormdesk/backend/internal/infrastructure/event"
	"go.uber.org/zap"
)

// MemoryRelay fans envelopes out to subscribers in this process only.
// It is used when Redis is disabled and in tests.
type MemoryRelay struct {
	mu     sync.RWMutex
	subs   map[int]func(event.Envelope)
	nextID int
	closed chan struct{}
	once   sync.Once
	logger *zap.Logger
}

// NewMemoryRelay creates an in-memory relay
func NewMemoryRelay(logger *zap.Logger) *MemoryRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryRelay{
		subs:   make(map[int]func(event.Envelope)),
		closed: make(chan struct{}),
		logger: logger,
	}
}

// Publish delivers the envelope to every current subscriber synchronously
func (m *MemoryRelay) Publish(ctx context.Context, env event.Envelope) error {
	m.mu.RLock()
	callbacks := make([]func(event.Envelope), 0, len(m.subs))
	for _, cb := range m.subs {
		callbacks = append(callbacks, cb)
	}
	m.mu.RUnlock()

	for _, cb := range callbacks {
		m.deliver(cb, env)
	}
	return nil
}

// Subscribe registers callback and blocks until ctx is done or the relay is
// closed
func (m *MemoryRelay) Subscribe(ctx context.Context, callback func(env event.Envelope)) error {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = callback
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.closed:
		return nil
	}
}

// Subscribers returns the number of active subscriptions
func (m *MemoryRelay) Subscribers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}

// Close ends every subscription
func (m *MemoryRelay) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}

func (m *MemoryRelay) deliver(cb func(event.Envelope), env event.Envelope) {
	defer func() {
		if p := recover(); p != nil {
			m.logger.Error("Panic in realtime callback",
				zap.String("event_type", env.Type),
				zap.Any("panic", p))
		}
	}()
	cb(env)
}

var _ Relay = (*MemoryRelay)(nil)
