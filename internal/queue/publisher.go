package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers booking events to RabbitMQ. A Publisher with an empty
// URL is a no-op, so the service runs without a broker in development.
// Publish failures are logged by callers and never fail the request that
// triggered them.
type Publisher struct {
	url    string
	logger *slog.Logger
}

func NewPublisher(url string, logger *slog.Logger) *Publisher {
	return &Publisher{url: url, logger: logger}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.url != ""
}

func (p *Publisher) PublishBookingCreated(ctx context.Context, event BookingEvent) error {
	return p.publish(ctx, BookingCreatedQueue, event)
}

func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event BookingEvent) error {
	return p.publish(ctx, BookingConfirmedQueue, event)
}

func (p *Publisher) PublishBookingCancelled(ctx context.Context, event BookingEvent) error {
	return p.publish(ctx, BookingCancelledQueue, event)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event BookingEvent) error {
	if !p.Enabled() {
		return nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel open failed: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare failed: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish failed: %w", err)
	}
	return nil
}
