// Package notify publishes domain events for downstream consumers
// (e-mail relays, CRM sync) over AMQP.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"residence/internal/contextkeys"
	"residence/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	eventTypeInquiryCreated = "inquiry.created"
	eventVersion            = "1.0.0"
	publishTimeout          = 10 * time.Second
)

// Publisher delivers inquiry events
type Publisher interface {
	PublishInquiry(ctx context.Context, event model.InquiryCreated) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct {
	log *slog.Logger
}

// NewNopPublisher creates a publisher that only logs
func NewNopPublisher(log *slog.Logger) *NopPublisher {
	return &NopPublisher{log: log}
}

func (p *NopPublisher) PublishInquiry(ctx context.Context, event model.InquiryCreated) error {
	p.log.DebugContext(ctx, "inquiry event dropped, no broker configured", "op", "notify.NopPublisher", "inquiry_id", event.ID)
	return nil
}

func (p *NopPublisher) Close() error { return nil }

// channel is the part of *amqp.Channel the publisher uses
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes events as persistent JSON messages to a durable queue
// through the default exchange.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    channel
	queue string
	log   *slog.Logger
}

// NewAMQPPublisher dials the broker and declares the queue
func NewAMQPPublisher(url, queue string, log *slog.Logger) (*AMQPPublisher, error) {
	const op = "notify.NewAMQPPublisher"

	if queue == "" {
		return nil, fmt.Errorf("%s: queue name cannot be empty", op)
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to broker: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: failed to open channel: %w", op, err)
	}

	if _, err = ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, queue, err)
	}

	log.Info("connected to message broker", "op", op, "queue", queue)
	return &AMQPPublisher{conn: conn, ch: ch, queue: queue, log: log}, nil
}

// PublishInquiry sends an inquiry.created event
func (p *AMQPPublisher) PublishInquiry(ctx context.Context, event model.InquiryCreated) error {
	const op = "notify.PublishInquiry"

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal event: %w", op, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		MessageId:    event.ID,
		Headers: amqp.Table{
			"event-type":    eventTypeInquiryCreated,
			"event-version": eventVersion,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err = p.ch.PublishWithContext(publishCtx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("%s: failed to publish: %w", op, err)
	}

	p.log.DebugContext(ctx, "inquiry event published", "op", op, "inquiry_id", event.ID)
	return nil
}

// Close closes the channel and the connection
func (p *AMQPPublisher) Close() error {
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// New returns an AMQP publisher when url is set, otherwise a NopPublisher
func New(url, queue string, log *slog.Logger) (Publisher, error) {
	if url == "" {
		return NewNopPublisher(log), nil
	}
	return NewAMQPPublisher(url, queue, log)
}
