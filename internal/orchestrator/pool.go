package orchestrator

import (
	"context"
	"log/slog"

	"github.com/justforname/osmo-trx/internal/drive"
	"github.com/justforname/osmo-trx/internal/radio"
	"github.com/justforname/osmo-trx/internal/trx"
)

// Worker — канальный воркер с точки зрения оркестратора.
type Worker interface {
	// Start запускает воркер. Ошибок нет: сбои после старта воркер
	// сообщает сам (trx.Config.OnFailure).
	Start()

	// Shutdown — кооперативный запрос остановки, не блокирует.
	Shutdown()

	// Wait ждёт остановки воркера или отмены ctx.
	Wait(ctx context.Context) error

	// Close освобождает воркер.
	Close() error
}

// WorkerFactory создаёт воркер канала.
type WorkerFactory func(cfg trx.Config) Worker

// NewTransceiver — WorkerFactory по умолчанию.
func NewTransceiver(cfg trx.Config) Worker {
	return trx.New(cfg)
}

// SpawnConfig — параметры запуска воркеров.
type SpawnConfig struct {
	Channels int
	BasePort int
	Address  string
	Pump     trx.BurstSource
	Radio    *radio.Interface

	// OnFailure передаётся каждому воркеру.
	OnFailure func(error)

	// OnStarted вызывается после Start каждого воркера.
	OnStarted func(cfg trx.Config)

	Logger *slog.Logger
}

// Spawn создаёт и запускает воркеры каналов 0..Channels-1 по порядку.
//
// Канал 0 — primary, остальные нет. Каждый воркер запускается до
// создания следующего. Порт канала i — drive.ChannelPort(BasePort, i).
func Spawn(cfg SpawnConfig, newWorker WorkerFactory) []Worker {
	if newWorker == nil {
		newWorker = NewTransceiver
	}

	workers := make([]Worker, 0, cfg.Channels)
	for i := 0; i < cfg.Channels; i++ {
		wcfg := trx.Config{
			Channel:   i,
			Port:      drive.ChannelPort(cfg.BasePort, i),
			Address:   cfg.Address,
			Pump:      cfg.Pump,
			Radio:     cfg.Radio,
			Primary:   i == 0,
			OnFailure: cfg.OnFailure,
			Logger:    cfg.Logger,
		}

		w := newWorker(wcfg)
		w.Start()
		workers = append(workers, w)

		if cfg.OnStarted != nil {
			cfg.OnStarted(wcfg)
		}
	}
	return workers
}
