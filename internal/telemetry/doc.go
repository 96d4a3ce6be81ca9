// Package telemetry обеспечивает наблюдаемость трансивера.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики каналов, drive loop и жизненного цикла
//
// Логгер создаётся только после того, как конфигурация прошла проверку:
// уровень логирования берётся из ключа Log.Level.
package telemetry
