package events

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes order events to a Kafka topic through a
// buffered, asynchronous writer. Messages are keyed by order id so one
// order's events stay in partition order.
type KafkaPublisher struct {
	writer  *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	service string
	logger  zerolog.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
// Call Start before publishing and Close on shutdown.
func NewKafkaPublisher(brokers []string, topic, serviceName string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:   make(chan kafka.Message, 256),
		closeCh: make(chan struct{}),
		service: serviceName,
		logger:  logger.With().Str("component", "event-publisher").Logger(),
	}
}

// Start runs the background send loop until ctx is cancelled or Close
// is called. Remaining buffered messages are flushed on the way out.
func (p *KafkaPublisher) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				return
			case m, ok := <-p.inbox:
				if !ok {
					p.drain()
					return
				}
				p.send(m)
			}
		}
	}()
}

func (p *KafkaPublisher) drain() {
	for {
		select {
		case m, ok := <-p.inbox:
			if !ok {
				_ = p.writer.Close()
				return
			}
			p.send(m)
		default:
			_ = p.writer.Close()
			return
		}
	}
}

func (p *KafkaPublisher) send(m kafka.Message) {
	if err := p.writer.WriteMessages(context.Background(), m); err != nil {
		p.logger.Error().Err(err).Msg("failed to publish event")
	}
}

// Close stops the send loop after flushing buffered messages.
func (p *KafkaPublisher) Close() {
	close(p.inbox)
	<-p.closeCh
}

// OrderPlaced publishes an OrderPlaced event.
func (p *KafkaPublisher) OrderPlaced(order *model.Order) {
	p.publish(order.ID.String(), TypeOrderPlaced, OrderPlacedPayload{
		OrderID: order.ID.String(),
		UserID:  order.UserID,
		Items:   itemQuantities(order.Items),
		Total:   order.Total.String(),
		Status:  string(order.Status),
	})
}

// OrderCancelled publishes an OrderCancelled event.
func (p *KafkaPublisher) OrderCancelled(order *model.Order) {
	p.publish(order.ID.String(), TypeOrderCancelled, OrderCancelledPayload{
		OrderID:     order.ID.String(),
		UserID:      order.UserID,
		CancelledAt: order.CancelledAt,
	})
}

func (p *KafkaPublisher) publish(key, eventType string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to encode event payload")
		return
	}

	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     p.service,
		Payload:      body,
	}

	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to encode event envelope")
		return
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}

	// Drop rather than block when the buffer is full; events are
	// best-effort and must not stall order processing.
	select {
	case p.inbox <- msg:
	default:
		p.logger.Warn().Str("event_type", eventType).Msg("event buffer full, dropping event")
	}
}
