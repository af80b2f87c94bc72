package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dormdesk/backend/internal/infrastructure/config"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	connectTimeout = 10 * time.Second
	messageTimeout = 15 * time.Second
	quiesceMillis  = 250
)

// ErrNoBroker is returned when ingestion is enabled without a broker URL
var ErrNoBroker = errors.New("mqtt broker is required")

// Subscriber owns the MQTT connection and feeds reading messages to a Handler
type Subscriber struct {
	cfg     config.MQTTConfig
	topic   string
	handler *Handler
	logger  *zap.Logger

	client  mqtt.Client
	mu      sync.Mutex
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewSubscriber creates a subscriber for cfg; it does not connect
func NewSubscriber(cfg config.MQTTConfig, handler *Handler, logger *zap.Logger) (*Subscriber, error) {
	if cfg.Broker == "" {
		return nil, ErrNoBroker
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "dormdesk-" + uuid.NewString()[:8]
	}
	if cfg.QoS > 2 {
		return nil, fmt.Errorf("invalid mqtt qos %d", cfg.QoS)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{
		cfg:     cfg,
		topic:   ReadingTopic(cfg.TopicPrefix),
		handler: handler,
		logger:  logger.Named("mqtt"),
	}, nil
}

// Topic returns the subscription filter
func (s *Subscriber) Topic() string {
	return s.topic
}

func (s *Subscriber) clientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.Broker)
	opts.SetClientID(s.cfg.ClientID)
	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
	}
	if s.cfg.Password != "" {
		opts.SetPassword(s.cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetOrderMatters(false)
	opts.SetConnectTimeout(connectTimeout)
	// a clean session drops subscriptions, so subscribe on every connect
	opts.SetOnConnectHandler(s.subscribe)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.logger.Warn("mqtt connection lost", zap.Error(err))
	})
	return opts
}

// Start connects to the broker. Messages are handled until Stop or until
// ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return nil
	}

	s.baseCtx, s.cancel = context.WithCancel(ctx)
	client := mqtt.NewClient(s.clientOptions())
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		s.cancel()
		return fmt.Errorf("failed to connect to MQTT broker %s: timeout", s.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		s.cancel()
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	s.client = client

	s.logger.Info("Meter ingestion started",
		zap.String("broker", s.cfg.Broker),
		zap.String("topic", s.topic),
		zap.Uint8("qos", s.cfg.QoS))
	return nil
}

func (s *Subscriber) subscribe(client mqtt.Client) {
	token := client.Subscribe(s.topic, s.cfg.QoS, s.onMessage)
	if !token.WaitTimeout(connectTimeout) {
		s.logger.Error("mqtt subscribe timed out", zap.String("topic", s.topic))
		return
	}
	if err := token.Error(); err != nil {
		s.logger.Error("mqtt subscribe failed", zap.String("topic", s.topic), zap.Error(err))
		return
	}
	s.logger.Debug("mqtt subscribed", zap.String("topic", s.topic))
}

func (s *Subscriber) onMessage(_ mqtt.Client, msg mqtt.Message) {
	s.mu.Lock()
	base := s.baseCtx
	s.mu.Unlock()
	if base == nil {
		base = context.Background()
	}
	if base.Err() != nil {
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(base, messageTimeout)
	defer cancel()
	if err := s.handler.Handle(ctx, msg.Topic(), msg.Payload()); err != nil {
		s.logger.Error("failed to handle meter message",
			zap.String("topic", msg.Topic()),
			zap.Uint16("message_id", msg.MessageID()),
			zap.Error(err))
	}
}

// Stop unsubscribes, waits for in-flight messages and disconnects
func (s *Subscriber) Stop(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	if client == nil {
		return nil
	}

	client.Unsubscribe(s.topic).WaitTimeout(time.Second)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		client.Disconnect(quiesceMillis)
		return ctx.Err()
	}

	client.Disconnect(quiesceMillis)
	s.logger.Info("Meter ingestion stopped")
	return nil
}
