package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"
)

// Flag — флаг завершения процесса.
type Flag struct {
	raised atomic.Bool
}

// Raise поднимает флаг. Повторные вызовы ничего не меняют.
func (f *Flag) Raise() {
	f.raised.Store(true)
}

// IsRaised проверяет флаг.
func (f *Flag) IsRaised() bool {
	return f.raised.Load()
}

// Poll блокируется, пока флаг не поднят, проверяя его раз в interval.
//
// Отмена ctx поднимает флаг: процесс, у которого отобрали контекст,
// всё равно проходит штатную последовательность остановки.
func (f *Flag) Poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for !f.IsRaised() {
		select {
		case <-ctx.Done():
			f.Raise()
		case <-ticker.C:
		}
	}
}

// NotifyFunc регистрирует доставку сигналов в канал.
type NotifyFunc func(c chan<- os.Signal, sigs ...os.Signal) error

// Signals — сигналы завершения.
var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// osNotify — регистрация через os/signal.
func osNotify(c chan<- os.Signal, sigs ...os.Signal) error {
	signal.Notify(c, sigs...)
	return nil
}

// Handler — установленные обработчики сигналов.
type Handler struct {
	ch   chan os.Signal
	done chan struct{}
}

// Install устанавливает обработчики SIGINT и SIGTERM, поднимающие flag.
func Install(flag *Flag) (*Handler, error) {
	return install(flag, osNotify)
}

// InstallWith — Install с собственной регистрацией сигналов.
func InstallWith(flag *Flag, notify NotifyFunc) (*Handler, error) {
	return install(flag, notify)
}

func install(flag *Flag, notify NotifyFunc) (*Handler, error) {
	if flag == nil {
		return nil, fmt.Errorf("%w: nil flag", ErrSignalSetup)
	}

	h := &Handler{
		ch:   make(chan os.Signal, 1),
		done: make(chan struct{}),
	}
	if err := notify(h.ch, Signals...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSignalSetup, err)
	}

	// Обработчик делает ровно одно: поднимает флаг.
	go func() {
		for {
			select {
			case <-h.ch:
				flag.Raise()
			case <-h.done:
				return
			}
		}
	}()

	return h, nil
}

// Stop снимает обработчики.
func (h *Handler) Stop() {
	signal.Stop(h.ch)
	close(h.done)
}
