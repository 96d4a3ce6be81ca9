package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventType — тип события, он же routing key.
type EventType string

// Типы событий.
const (
	EventStarted        EventType = "trx.started"
	EventChannelStarted EventType = "trx.channel.started"
	EventStopping       EventType = "trx.stopping"
	EventStopped        EventType = "trx.stopped"
)

// Event — событие жизненного цикла.
type Event struct {
	Type       EventType `json:"type"`
	InstanceID string    `json:"instance_id"`

	// Channel и Port заполняются для trx.channel.started.
	Channel *int `json:"channel,omitempty"`
	Port    int  `json:"port,omitempty"`
	Primary bool `json:"primary,omitempty"`

	Channels int    `json:"channels,omitempty"`
	State    string `json:"state,omitempty"`
}

// Message — конверт публикуемого сообщения.
type Message struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Payload   Event     `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage оборачивает событие в конверт с новым ID.
func NewMessage(ev Event) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      ev.Type,
		Payload:   ev,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher публикует события в ExchangeLifecycle.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// Publish публикует событие. Сообщения не persistent: событие о старте
// после рестарта брокера никому не нужно.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	msg := NewMessage(ev)
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(ctx,
			string(ExchangeLifecycle),
			string(ev.Type),
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Transient,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish %s: %w", ev.Type, err)
		}

		p.logger.Debug("published event",
			"type", ev.Type,
			"message_id", msg.ID,
		)
		return nil
	})
}
