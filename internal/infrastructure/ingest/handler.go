// Package ingest receives meter readings pushed by smart meters over MQTT.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	appmetering "github.com/dormdesk/backend/internal/application/metering"
	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReadingRecorder is implemented by metering.ReadingService
type ReadingRecorder interface {
	RecordReading(ctx context.Context, req appmetering.RecordReadingRequest, recordedBy string) (*appmetering.ReadingResponse, error)
}

// ReadingMessage is the payload published by a meter
type ReadingMessage struct {
	RoomID   string          `json:"room_id"`
	Month    string          `json:"month"`
	Water    decimal.Decimal `json:"water"`
	Electric decimal.Decimal `json:"electric"`
}

// Handler turns meter messages into recorded readings
type Handler struct {
	recorder ReadingRecorder
	logger   *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(recorder ReadingRecorder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{recorder: recorder, logger: logger.Named("ingest")}
}

// Handle records one reading. Messages the recorder refuses as invalid,
// duplicate or for an unknown room are dropped with a warning and nil is
// returned, since meters resend on reconnect. Other errors are returned.
func (h *Handler) Handle(ctx context.Context, topic string, payload []byte) error {
	device := DeviceFromTopic(topic)
	log := h.logger.With(zap.String("topic", topic), zap.String("device", device))

	var msg ReadingMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		log.Warn("dropping malformed meter message", zap.Error(err))
		return nil
	}
	roomID, err := uuid.Parse(msg.RoomID)
	if err != nil {
		log.Warn("dropping meter message with bad room id", zap.String("room_id", msg.RoomID))
		return nil
	}

	req := appmetering.RecordReadingRequest{
		RoomID:   roomID,
		Month:    msg.Month,
		Water:    msg.Water,
		Electric: msg.Electric,
	}
	resp, err := h.recorder.RecordReading(ctx, req, "meter:"+device)
	switch {
	case err == nil:
		log.Info("meter reading recorded",
			zap.String("reading_id", resp.ID.String()),
			zap.String("month", resp.Month))
		return nil
	case shared.IsValidation(err), shared.IsDuplicate(err), shared.IsNotFound(err):
		log.Warn("dropping meter reading",
			zap.String("room_id", msg.RoomID),
			zap.String("month", msg.Month),
			zap.String("code", shared.CodeOf(err)),
			zap.Error(err))
		return nil
	default:
		return fmt.Errorf("record reading from %s: %w", device, err)
	}
}

// ReadingTopic is the subscription filter for all meters under prefix
func ReadingTopic(prefix string) string {
	return strings.TrimSuffix(prefix, "/") + "/+/reading"
}

// DeviceFromTopic returns the wildcard segment of a reading topic
func DeviceFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return topic
	}
	return parts[len(parts)-2]
}
