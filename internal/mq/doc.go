// Package mq публикует события жизненного цикла трансивера в RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange trx.lifecycle
//   - publisher.go  — публикация событий
//
// Типы событий (routing key = тип):
//   - trx.started          — все каналы запущены
//   - trx.channel.started  — канал запущен
//   - trx.stopping         — получен запрос остановки
//   - trx.stopped          — ресурсы освобождены
//
// RabbitMQ не обязателен: без соединения процесс работает без событий.
package mq
