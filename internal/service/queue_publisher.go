// Package queue_publisher publishes sale lifecycle events to RabbitMQ.
// Publishing is best-effort: errors are logged and returned so callers
// can ignore them without interrupting the request that triggered the
// event.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/marketplace-api/internal/queue"
)

// PublishSaleCompleted publishes ev to the sale.completed queue. A
// missing EventID is filled in here so every published message is
// traceable.
func PublishSaleCompleted(ctx context.Context, ev q.SaleCompletedEvent) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	return publish(ctx, q.SaleCompletedQueue, ev)
}

// PublishSaleCancelled publishes ev to the sale.cancelled queue.
func PublishSaleCancelled(ctx context.Context, ev q.SaleCancelledEvent) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	return publish(ctx, q.SaleCancelledQueue, ev)
}

// publish dials the broker, declares the durable queue and sends one
// persistent JSON message on the default exchange. Connection setup per
// publish keeps the happy path free of shared channel state.
func publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
