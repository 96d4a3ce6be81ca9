package main

import (
	"log/slog"

	"github.com/justforname/osmo-trx/internal/mq"
	"github.com/justforname/osmo-trx/internal/orchestrator"
)

// eventLink — необязательное подключение к RabbitMQ для событий.
type eventLink struct {
	url  string
	conn *mq.Connection
}

func newEventLink(url string) *eventLink {
	return &eventLink{url: url}
}

// Publisher подключается к брокеру. Без брокера трансивер работает,
// просто не публикуя события.
func (e *eventLink) Publisher(logger *slog.Logger) orchestrator.EventPublisher {
	if e.url == "" {
		logger.Info("RabbitMQ URL not set, lifecycle events disabled")
		return nil
	}

	conn, err := mq.NewConnection(e.url, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, lifecycle events disabled", "error", err)
		return nil
	}
	e.conn = conn

	if err := mq.SetupTopology(conn); err != nil {
		logger.Warn("failed to setup topology", "error", err)
	}
	return mq.NewPublisher(conn, logger)
}

func (e *eventLink) Close() {
	if e.conn != nil {
		e.conn.Close()
	}
}
