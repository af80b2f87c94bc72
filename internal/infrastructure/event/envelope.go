package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Envelope is the wire form of a domain event on the realtime channel.
// TenantID is set for events that concern one renter; the stream uses it to
// keep renters from seeing each other's events.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	TenantID      *uuid.UUID      `json:"tenant_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a domain event
func NewEnvelope(e shared.DomainEvent) (Envelope, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", e.EventType(), err)
	}
	env := Envelope{
		ID:            e.EventID(),
		Type:          e.EventType(),
		AggregateType: e.AggregateType(),
		AggregateID:   e.AggregateID(),
		OccurredAt:    e.OccurredAt(),
		Payload:       payload,
	}
	if scoped, ok := e.(shared.TenantScopedEvent); ok {
		id := scoped.ConcernedTenantID()
		env.TenantID = &id
	}
	return env, nil
}

// Encode serializes the envelope
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEnvelope parses an encoded envelope
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing type")
	}
	return env, nil
}

// VisibleTo reports whether a subscriber may receive the event. Admins see
// everything; a renter sees only events scoped to them.
func (e Envelope) VisibleTo(admin bool, tenantID uuid.UUID) bool {
	if admin {
		return true
	}
	return e.TenantID != nil && *e.TenantID == tenantID
}
