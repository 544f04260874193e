package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const registrationQueueName = "registration.confirmed"

// Publisher emits registration events to RabbitMQ.  Publishing is strictly
// best-effort: admission has already been committed by the time an event is
// published, so callers log failures and move on.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher for the given broker URL, or nil when the
// URL is empty (event publishing disabled).
func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url}
}

// PublishRegistrationConfirmed marshals the event and publishes it to the
// durable registration.confirmed queue.  A nil receiver is a no-op so wiring
// code does not need to branch on whether the broker is configured.
func (p *Publisher) PublishRegistrationConfirmed(ctx context.Context, ev RegistrationConfirmedEvent) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// Dial per publish keeps the publisher stateless; registration volume is
	// far below the point where connection reuse would matter.
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(registrationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = ch.PublishWithContext(pubCtx, "", registrationQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
