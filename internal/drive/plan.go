package drive

import (
	"fmt"
	"log/slog"

	"github.com/justforname/osmo-trx/internal/radio"
	"github.com/justforname/osmo-trx/internal/telemetry"
)

// MaxChannels — максимальное число каналов в сборке.
const MaxChannels = 8

// PortStride — шаг портов между соседними каналами.
const PortStride = 2

// ChannelPort возвращает порт канала ch.
func ChannelPort(base, ch int) int {
	return base + PortStride*ch
}

// CheckChannels проверяет 1 ≤ n ≤ MaxChannels.
func CheckChannels(n int) error {
	if n < 1 || n > MaxChannels {
		return fmt.Errorf("%w: %d channels requested, build supports 1..%d", ErrChannelCountExceeded, n, MaxChannels)
	}
	return nil
}

// Factory создаёт Pump по конфигурации.
type Factory func(cfg Config) Pump

// PlanConfig — входные данные плана каналов.
type PlanConfig struct {
	Channels int
	Port     int
	Address  string
	Device   radio.Device
	Logger   *slog.Logger
}

// Plan — радиоинтерфейс и общий Pump на все каналы.
type Plan struct {
	Channels int
	Port     int
	Address  string
	Radio    *radio.Interface
	Pump     Pump
}

// NewPlan проверяет число каналов и строит радиоинтерфейс и Pump.
//
// Число каналов проверяется до создания чего-либо. Если Pump не
// инициализировался, ошибка пишется с уровнем ALERT, а уже созданные
// Pump и интерфейс закрываются.
func NewPlan(cfg PlanConfig, newPump Factory) (*Plan, error) {
	if err := CheckChannels(cfg.Channels); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if newPump == nil {
		newPump = func(c Config) Pump { return NewDriveLoop(c) }
	}

	iface := radio.NewInterface(cfg.Device, cfg.Channels)
	pump := newPump(Config{
		Port:     cfg.Port,
		Address:  cfg.Address,
		Radio:    iface,
		Channels: cfg.Channels,
		Logger:   logger,
	})

	if err := pump.Init(); err != nil {
		telemetry.Alert(logger, "failed to initialize drive loop",
			"port", cfg.Port,
			"address", cfg.Address,
			"error", err,
		)
		if cerr := pump.Close(); cerr != nil {
			logger.Warn("failed to close drive loop", "error", cerr)
		}
		if cerr := iface.Close(); cerr != nil {
			logger.Warn("failed to close radio interface", "error", cerr)
		}
		return nil, fmt.Errorf("%w: %w", ErrPumpInitFailed, err)
	}

	return &Plan{
		Channels: cfg.Channels,
		Port:     cfg.Port,
		Address:  cfg.Address,
		Radio:    iface,
		Pump:     pump,
	}, nil
}

// ChannelPort возвращает порт канала ch этого плана.
func (p *Plan) ChannelPort(ch int) int {
	return ChannelPort(p.Port, ch)
}
