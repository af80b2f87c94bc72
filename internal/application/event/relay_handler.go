package event

import (
	"context"

	"github.com/dormdesk/backend/internal/domain/shared"
	infraevent "github.com/dormdesk/backend/internal/infrastructure/event"
)

// EnvelopePublisher is the publishing half of cache.Relay
type EnvelopePublisher interface {
	Publish(ctx context.Context, env infraevent.Envelope) error
}

// RelayHandler forwards every committed event to the realtime relay, where
// the SSE stream picks it up
type RelayHandler struct {
	relay EnvelopePublisher
}

// NewRelayHandler creates a new RelayHandler
func NewRelayHandler(relay EnvelopePublisher) *RelayHandler {
	return &RelayHandler{relay: relay}
}

// EventTypes is empty: the relay receives all events
func (h *RelayHandler) EventTypes() []string {
	return nil
}

// Handle wraps the event in an envelope and publishes it
func (h *RelayHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	env, err := infraevent.NewEnvelope(e)
	if err != nil {
		return err
	}
	return h.relay.Publish(ctx, env)
}

var _ shared.EventHandler = (*RelayHandler)(nil)
