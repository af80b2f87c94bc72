package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	appshared "github.com/dormdesk/backend/internal/application/shared"
	"github.com/dormdesk/backend/internal/infrastructure/event"
	"github.com/dormdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventSource delivers committed domain events, typically the realtime relay
type EventSource interface {
	Subscribe(ctx context.Context, callback func(env event.Envelope)) error
}

// SSEMessage is one server-sent event
type SSEMessage struct {
	Event string
	Data  string
	ID    string
}

type sseClient struct {
	id       string
	uid      string
	admin    bool
	tenantID uuid.UUID
	ch       chan SSEMessage
}

// EventStreamHandler pushes domain events to connected clients over SSE.
// Admins receive every event, renters only the events about themselves.
type EventStreamHandler struct {
	BaseHandler
	source     EventSource
	actors     ActorResolver
	logger     *zap.Logger
	clients    sync.Map // map[string]*sseClient
	ctx        context.Context
	cancel     context.CancelFunc
	heartbeat  time.Duration
	bufferSize int
	maxClients int
	started    bool
	startMu    sync.Mutex
	wg         sync.WaitGroup
}

// EventStreamOption configures an EventStreamHandler
type EventStreamOption func(*EventStreamHandler)

// WithStreamLogger sets the logger
func WithStreamLogger(logger *zap.Logger) EventStreamOption {
	return func(h *EventStreamHandler) {
		h.logger = logger.Named("sse")
	}
}

// WithStreamHeartbeat sets the heartbeat interval
func WithStreamHeartbeat(interval time.Duration) EventStreamOption {
	return func(h *EventStreamHandler) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// WithStreamBuffer sets how many events may queue per client before new
// ones are dropped for it
func WithStreamBuffer(size int) EventStreamOption {
	return func(h *EventStreamHandler) {
		if size > 0 {
			h.bufferSize = size
		}
	}
}

// WithStreamMaxClients caps concurrent connections; 0 means unlimited
func WithStreamMaxClients(max int) EventStreamOption {
	return func(h *EventStreamHandler) {
		h.maxClients = max
	}
}

// NewEventStreamHandler creates a new EventStreamHandler
func NewEventStreamHandler(source EventSource, actors ActorResolver, opts ...EventStreamOption) *EventStreamHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &EventStreamHandler{
		source:     source,
		actors:     actors,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		bufferSize: 64,
		maxClients: 1000,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start subscribes to the event source and begins sending heartbeats
func (h *EventStreamHandler) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started {
		return errors.New("event stream already started")
	}
	if h.ctx.Err() != nil {
		return errors.New("event stream stopped")
	}

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		h.sendHeartbeats()
	}()
	go func() {
		defer h.wg.Done()
		err := h.source.Subscribe(h.ctx, h.dispatch)
		if err != nil && h.ctx.Err() == nil {
			h.logger.Error("Event stream subscription ended", zap.Error(err))
		}
	}()

	h.started = true
	h.logger.Info("Event stream started")
	return nil
}

// Stop disconnects every client and ends the subscription
func (h *EventStreamHandler) Stop() {
	h.cancel()
	h.wg.Wait()
	h.logger.Info("Event stream stopped")
}

// dispatch forwards an envelope to the clients allowed to see it
func (h *EventStreamHandler) dispatch(env event.Envelope) {
	data, err := env.Encode()
	if err != nil {
		h.logger.Error("Failed to encode event", zap.String("event_type", env.Type), zap.Error(err))
		return
	}
	msg := SSEMessage{Event: env.Type, Data: string(data), ID: env.ID.String()}

	h.clients.Range(func(_, value any) bool {
		client := value.(*sseClient)
		if env.VisibleTo(client.admin, client.tenantID) {
			h.send(client, msg)
		}
		return true
	})
}

func (h *EventStreamHandler) send(client *sseClient, msg SSEMessage) {
	select {
	case client.ch <- msg:
	default:
		h.logger.Warn("Client buffer full, dropping event",
			zap.String("client_id", client.id),
			zap.String("event", msg.Event))
	}
}

func (h *EventStreamHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case now := <-ticker.C:
			msg := SSEMessage{Event: "heartbeat", Data: fmt.Sprintf(`{"timestamp":%d}`, now.Unix())}
			h.clients.Range(func(_, value any) bool {
				h.send(value.(*sseClient), msg)
				return true
			})
		}
	}
}

// Stream handles GET /events/stream
func (h *EventStreamHandler) Stream(c *gin.Context) {
	actor, ok := h.actor(c, h.actors)
	if !ok {
		return
	}
	if h.maxClients > 0 && h.ClientCount() >= h.maxClients {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Too many event stream connections")
		return
	}

	client := newSSEClient(actor, h.bufferSize)
	h.clients.Store(client.id, client)
	defer h.clients.Delete(client.id)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	h.logger.Info("SSE client connected",
		zap.String("client_id", client.id),
		zap.String("uid", client.uid))

	writeEvent(c.Writer, SSEMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"client_id":"%s","timestamp":%d}`, client.id, time.Now().Unix()),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Debug("SSE client disconnected", zap.String("client_id", client.id))
			return
		case <-h.ctx.Done():
			return
		case msg := <-client.ch:
			writeEvent(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// ClientCount returns the number of connected clients
func (h *EventStreamHandler) ClientCount() int {
	count := 0
	h.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

func newSSEClient(actor appshared.Actor, buffer int) *sseClient {
	client := &sseClient{
		id:    uuid.NewString(),
		uid:   actor.UID,
		admin: actor.IsAdmin(),
		ch:    make(chan SSEMessage, buffer),
	}
	if actor.TenantID != nil {
		client.tenantID = *actor.TenantID
	}
	return client
}

func writeEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
