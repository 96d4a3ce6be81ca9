package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// ExchangeLifecycle — topic exchange событий жизненного цикла.
const ExchangeLifecycle Exchange = "trx.lifecycle"

// SetupTopology объявляет exchange событий.
//
// Очереди объявляют потребители: трансивер только публикует.
func SetupTopology(conn *Connection) error {
	return conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeLifecycle), // name
			"topic",                   // type
			true,                      // durable
			false,                     // auto-deleted
			false,                     // internal
			false,                     // no-wait
			nil,                       // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeLifecycle, err)
		}
		return nil
	})
}
