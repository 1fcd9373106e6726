package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends reservation events to RabbitMQ.  Each publish dials its
// own connection; the booking path tolerates publish failures.
type Publisher struct {
	URL string
}

func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// PublishReservationConfirmed marshals ev and publishes it as a persistent
// message on the reservation.confirmed queue.
func (p *Publisher) PublishReservationConfirmed(ctx context.Context, ev ReservationConfirmedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(3 * time.Second)})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch); err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", ReservationConfirmedQueue, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func declare(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(
		ReservationConfirmedQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return nil
}
