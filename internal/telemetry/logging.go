package telemetry

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// LevelAlert — уровень выше ERROR для фатальных ошибок запуска.
const LevelAlert = slog.LevelError + 4

// ParseLevel переводит имя уровня из конфигурации в slog.Level.
//
// Понимает имена OpenBTS (NOTICE, WARNING, ERR, CRIT, ALERT, EMERG)
// наравне с DEBUG, INFO, WARN, ERROR. По умолчанию: INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERR", "ERROR", "CRIT":
		return slog.LevelError
	case "ALERT", "EMERG":
		return LevelAlert
	default:
		// INFO, NOTICE и всё неизвестное
		return slog.LevelInfo
	}
}

// SetupLogger инициализирует глобальный логгер с уровнем level.
//
// Формат вывода определяется переменной LOG_FORMAT:
//   - "json" (по умолчанию) — JSON формат для production
//   - "text" — человекочитаемый формат для разработки
func SetupLogger(level string) *slog.Logger {
	var handler slog.Handler

	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl == slog.LevelDebug,
		ReplaceAttr: replaceLevel,
	}

	if os.Getenv("LOG_FORMAT") == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// replaceLevel печатает LevelAlert как "ALERT" вместо "ERROR+4".
func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelAlert {
		a.Value = slog.StringValue("ALERT")
	}
	return a
}

// Alert пишет сообщение с уровнем LevelAlert.
func Alert(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelAlert, msg, args...)
}

// WithInstanceID возвращает логгер с добавленным instance_id.
func WithInstanceID(logger *slog.Logger, id string) *slog.Logger {
	return logger.With("instance_id", id)
}

// WithChannel возвращает логгер с добавленным номером канала.
func WithChannel(logger *slog.Logger, ch int) *slog.Logger {
	return logger.With("chan", ch)
}
