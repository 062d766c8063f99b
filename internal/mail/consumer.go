package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/coursecity0-ctr/CourseCity-sub000/internal/notify"
)

// Transport is the actual delivery mechanism behind the mailer worker.
type Transport interface {
	Deliver(ctx context.Context, m notify.Email) error
}

// LogTransport writes deliveries to the log. Stands in until a real SMTP
// relay is wired up.
type LogTransport struct {
	Logger *log.Logger
}

func (t LogTransport) Deliver(ctx context.Context, m notify.Email) error {
	t.Logger.Printf("mail to=%s subject=%q body=%q", m.To, m.Subject, m.Body)
	return nil
}

// StartEmailConsumer drains queued email requests and hands them to the
// transport. Undeliverable messages are dropped after a nack; there is no
// retry queue.
func StartEmailConsumer(ctx context.Context, conn *amqp.Connection, transport Transport, logger *log.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		EmailQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(
		EmailQueue,
		"mailer", // consumer tag
		false,    // autoAck
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Println("stopping email consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Println("messages channel closed")
					return
				}

				if err := handleEmailRequest(ctx, transport, msg.Body); err != nil {
					logger.Printf("handle email request: %v", err)
					_ = msg.Nack(false, false) // drop, lost mail is accepted
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	return nil
}

func handleEmailRequest(ctx context.Context, transport Transport, body []byte) error {
	var req emailRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return transport.Deliver(ctx, notify.Email{To: req.To, Subject: req.Subject, Body: req.Body})
}
