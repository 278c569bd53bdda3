// Package notify publishes ticket lifecycle messages to the notification
// pipeline over RabbitMQ. Delivery is best-effort by contract: the
// downstream mail/push workers own retries and formatting.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/leaatimberini/sucht-backend-sub000/internal/domain"
)

// Routing keys consumed by the notification workers.
const (
	TopicTicketIssued      = "ticket.issued"
	TopicTicketValidated   = "ticket.validated"
	TopicTicketInvalidated = "ticket.invalidated"
)

const exchangeName = "notifications"

// TicketMessage is the wire payload for every ticket lifecycle topic.
type TicketMessage struct {
	TicketID      string `json:"ticket_id"`
	UserID        string `json:"user_id"`
	TierID        string `json:"tier_id"`
	Quantity      int    `json:"quantity"`
	RedeemedCount int    `json:"redeemed_count"`
	Status        string `json:"status"`
}

// Broker implements app.Notifier over an AMQP topic exchange.
type Broker struct {
	url string
	log zerolog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewBroker(url string, log zerolog.Logger) (*Broker, error) {
	b := &Broker{
		url: url,
		log: log.With().Str("component", "notify").Logger(),
	}
	if err := b.connect(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Broker) connect() error {
	conn, err := amqp.Dial(b.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}
	b.conn = conn
	b.channel = ch
	return nil
}

func (b *Broker) TicketIssued(ctx context.Context, ticket domain.Ticket) error {
	return b.publish(ctx, TopicTicketIssued, ticket)
}

func (b *Broker) TicketValidated(ctx context.Context, ticket domain.Ticket) error {
	return b.publish(ctx, TopicTicketValidated, ticket)
}

func (b *Broker) TicketInvalidated(ctx context.Context, ticket domain.Ticket) error {
	return b.publish(ctx, TopicTicketInvalidated, ticket)
}

func (b *Broker) publish(ctx context.Context, topic string, ticket domain.Ticket) error {
	body, err := json.Marshal(TicketMessage{
		TicketID:      ticket.ID,
		UserID:        ticket.UserID,
		TierID:        ticket.TierID,
		Quantity:      ticket.Quantity,
		RedeemedCount: ticket.RedeemedCount,
		Status:        string(ticket.Status),
	})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureConnection(); err != nil {
		return err
	}
	err = b.channel.PublishWithContext(ctx, exchangeName, topic, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	b.log.Debug().Str("topic", topic).Str("ticket_id", ticket.ID).Msg("notification published")
	return nil
}

func (b *Broker) ensureConnection() error {
	if b.conn != nil && !b.conn.IsClosed() {
		return nil
	}
	b.log.Warn().Msg("rabbitmq connection lost, reconnecting")
	return b.connect()
}

func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.channel != nil {
		if err := b.channel.Close(); err != nil {
			return err
		}
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
