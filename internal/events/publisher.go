// Package events announces submitted orders to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"froid-storefront/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// OrderSubmittedType is the AMQP message type of order events.
const OrderSubmittedType = "order.submitted"

const publishTimeout = 5 * time.Second

// OrderSubmitted is published after the backend accepted an order.
type OrderSubmitted struct {
	OrderID       int64               `json:"orderId"`
	OrderNumber   string              `json:"orderNumber"`
	ActorKind     model.ActorKind     `json:"actorKind"`
	CustomerRef   string              `json:"customerRef,omitempty"`
	DeliveryMode  model.DeliveryMode  `json:"deliveryMode"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Lines         []model.OrderLine   `json:"lines"`
	Subtotal      int64               `json:"subtotal"`
	DeliveryFee   int64               `json:"deliveryFee"`
	TotalDue      int64               `json:"totalDue"`
	SubmittedAt   time.Time           `json:"submittedAt"`
}

// NewOrderSubmitted builds the event for a confirmed draft.
func NewOrderSubmitted(actor model.Actor, draft *model.OrderDraft, conf *model.OrderConfirmation, at time.Time) OrderSubmitted {
	return OrderSubmitted{
		OrderID:       conf.OrderID,
		OrderNumber:   conf.OrderNumber,
		ActorKind:     actor.Kind,
		CustomerRef:   draft.CustomerRef,
		DeliveryMode:  draft.DeliveryMode,
		PaymentMethod: draft.PaymentMethod,
		Lines:         draft.Lines,
		Subtotal:      draft.Subtotal,
		DeliveryFee:   draft.DeliveryFee,
		TotalDue:      draft.TotalDue,
		SubmittedAt:   at.UTC(),
	}
}

// Publisher sends order events.
type Publisher interface {
	PublishOrderSubmitted(ctx context.Context, event OrderSubmitted) error
	Close() error
}

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type amqpPublisher struct {
	conn   *amqp.Connection
	mu     sync.Mutex
	ch     channel
	queue  string
	logger zerolog.Logger
}

// NewRabbitMQPublisher dials url and declares a durable queue.
func NewRabbitMQPublisher(url, queue string, logger zerolog.Logger) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	p := newPublisher(ch, queue, logger)
	p.conn = conn
	p.logger.Info().Str("queue", queue).Msg("RabbitMQ publisher ready")
	return p, nil
}

func newPublisher(ch channel, queue string, logger zerolog.Logger) *amqpPublisher {
	return &amqpPublisher{
		ch:     ch,
		queue:  queue,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

func (p *amqpPublisher) PublishOrderSubmitted(ctx context.Context, event OrderSubmitted) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Type:         OrderSubmittedType,
			MessageId:    event.OrderNumber,
			Timestamp:    event.SubmittedAt,
			Body:         body,
		})
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	p.logger.Debug().
		Int64("order_id", event.OrderID).
		Str("order_number", event.OrderNumber).
		Msg("published order event")
	return nil
}

func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishOrderSubmitted(context.Context, OrderSubmitted) error { return nil }
func (nopPublisher) Close() error                                                { return nil }
