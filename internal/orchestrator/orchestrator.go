package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/justforname/osmo-trx/internal/config"
	"github.com/justforname/osmo-trx/internal/drive"
	"github.com/justforname/osmo-trx/internal/mq"
	"github.com/justforname/osmo-trx/internal/radio"
	"github.com/justforname/osmo-trx/internal/shutdown"
	"github.com/justforname/osmo-trx/internal/telemetry"
	"github.com/justforname/osmo-trx/internal/trx"
)

const publishTimeout = 2 * time.Second

// Стадии запуска для метрики StartupFailures.
const (
	stageChannels = "channels"
	stageConfig   = "config"
	stageSignals  = "signals"
	stageDevice   = "device"
	stageDrive    = "drive"
)

// EventPublisher публикует события жизненного цикла.
type EventPublisher interface {
	Publish(ctx context.Context, ev mq.Event) error
}

// Orchestrator проводит процесс трансивера через запуск и остановку.
//
// Порядок запуска:
//   - проверка числа каналов
//   - проверка хранилища конфигурации (до логгера)
//   - логгер и обработчики сигналов
//   - открытие устройства
//   - радиоинтерфейс и общий drive loop
//   - воркеры каналов 0..N-1
//
// Затем Run опрашивает флаг остановки и передаёт ресурсы Sequencer.
type Orchestrator struct {
	channels      int
	deviceArgs    string
	storeLocation string

	openStore config.OpenFunc
	newDevice func() radio.Device
	newPump   drive.Factory
	newWorker WorkerFactory
	newLogger func(level string) *slog.Logger
	events    func(logger *slog.Logger) EventPublisher
	notify    shutdown.NotifyFunc
	flag      *shutdown.Flag

	pollInterval  time.Duration
	graceInterval time.Duration
	stderr        io.Writer
	onState       func(State)

	instanceID string
	logger     *slog.Logger
	publisher  EventPublisher

	running atomic.Bool
	ready   atomic.Bool
	state   atomic.Int32
	failure atomic.Pointer[error]
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Channels — число каналов N.
	Channels int

	// DeviceArgs передаются устройству без изменений.
	DeviceArgs string

	// StoreLocation — путь к YAML-файлу или postgres:// DSN.
	StoreLocation string

	// OpenStore открывает хранилище (default: config.Open).
	OpenStore config.OpenFunc

	// NewDevice создаёт радиоустройство (default: radio.NewVirtualDevice).
	NewDevice func() radio.Device

	// NewPump создаёт drive loop (default: drive.NewDriveLoop).
	NewPump drive.Factory

	// NewWorker создаёт воркер канала (default: NewTransceiver).
	NewWorker WorkerFactory

	// NewLogger строит логгер по Log.Level (default: telemetry.SetupLogger).
	NewLogger func(level string) *slog.Logger

	// Events строит публикатор событий. nil — события не публикуются.
	Events func(logger *slog.Logger) EventPublisher

	// Notify регистрирует сигналы (default: os/signal).
	Notify shutdown.NotifyFunc

	// Flag — флаг остановки процесса (default: новый).
	Flag *shutdown.Flag

	PollInterval  time.Duration // опрос флага (default: 1s)
	GraceInterval time.Duration // ожидание воркеров (default: 2s)

	// Stderr — куда писать диагностику до появления логгера (default: os.Stderr).
	Stderr io.Writer

	// OnState вызывается при смене состояния Sequencer.
	OnState func(State)
}

// New создаёт Orchestrator.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		channels:      cfg.Channels,
		deviceArgs:    cfg.DeviceArgs,
		storeLocation: cfg.StoreLocation,
		openStore:     cfg.OpenStore,
		newDevice:     cfg.NewDevice,
		newPump:       cfg.NewPump,
		newWorker:     cfg.NewWorker,
		newLogger:     cfg.NewLogger,
		events:        cfg.Events,
		notify:        cfg.Notify,
		flag:          cfg.Flag,
		pollInterval:  cfg.PollInterval,
		graceInterval: cfg.GraceInterval,
		stderr:        cfg.Stderr,
		onState:       cfg.OnState,
		instanceID:    uuid.New().String(),
		logger:        slog.Default(),
	}

	if o.openStore == nil {
		o.openStore = config.Open
	}
	if o.newDevice == nil {
		o.newDevice = func() radio.Device { return radio.NewVirtualDevice() }
	}
	if o.newWorker == nil {
		o.newWorker = NewTransceiver
	}
	if o.newLogger == nil {
		o.newLogger = telemetry.SetupLogger
	}
	if o.flag == nil {
		o.flag = &shutdown.Flag{}
	}
	if o.pollInterval <= 0 {
		o.pollInterval = defaultPollInterval
	}
	if o.graceInterval <= 0 {
		o.graceInterval = defaultGraceInterval
	}
	if o.stderr == nil {
		o.stderr = os.Stderr
	}

	return o
}

// InstanceID возвращает идентификатор процесса.
func (o *Orchestrator) InstanceID() string {
	return o.instanceID
}

// State возвращает текущее состояние жизненного цикла.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Ready сообщает, что все воркеры запущены и остановка ещё не началась.
func (o *Orchestrator) Ready() bool {
	return o.ready.Load()
}

// Flag возвращает флаг остановки процесса.
func (o *Orchestrator) Flag() *shutdown.Flag {
	return o.flag
}

// Run выполняет запуск, ждёт флага остановки и освобождает ресурсы.
//
// Ошибка запуска возвращается сразу и не повторяется. После штатной
// остановки Run возвращает nil, а если остановку вызвал сбой воркера,
// ошибку, совместимую с ErrWorkerFailed.
func (o *Orchestrator) Run(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	if err := drive.CheckChannels(o.channels); err != nil {
		fmt.Fprintf(o.stderr, "%v\n", err)
		telemetry.StartupFailures.WithLabelValues(stageChannels).Inc()
		return err
	}

	store, summary, err := config.Gate(ctx, o.openStore, o.storeLocation, o.stderr)
	if err != nil {
		telemetry.StartupFailures.WithLabelValues(stageConfig).Inc()
		return err
	}
	// Нужен был только снимок Summary
	if err := store.Close(); err != nil {
		fmt.Fprintf(o.stderr, "Config: failed to close store: %v\n", err)
	}

	o.logger = telemetry.WithInstanceID(o.newLogger(summary.LogLevel), o.instanceID)
	o.logger.Info("configuration validated",
		"log_level", summary.LogLevel,
		"port", summary.Port,
		"address", summary.Address,
		"channels", o.channels,
	)
	if o.events != nil {
		o.publisher = o.events(o.logger)
	}

	handler, err := o.installSignals()
	if err != nil {
		telemetry.Alert(o.logger, "failed to install signal handlers", "error", err)
		telemetry.StartupFailures.WithLabelValues(stageSignals).Inc()
		return err
	}
	defer handler.Stop()

	dev := o.newDevice()
	mode, err := radio.Bootstrap(dev, o.deviceArgs)
	if err != nil {
		telemetry.Alert(o.logger, "failed to open radio device",
			"args", o.deviceArgs,
			"mode", mode.String(),
			"error", err,
		)
		if errors.Is(err, radio.ErrUnsupportedMode) {
			o.closeQuiet("device", dev)
		}
		telemetry.StartupFailures.WithLabelValues(stageDevice).Inc()
		return err
	}
	o.logger.Info("radio device opened", "args", o.deviceArgs, "mode", mode.String())

	plan, err := drive.NewPlan(drive.PlanConfig{
		Channels: o.channels,
		Port:     summary.Port,
		Address:  summary.Address,
		Device:   dev,
		Logger:   o.logger,
	}, o.newPump)
	if err != nil {
		o.closeQuiet("device", dev)
		telemetry.StartupFailures.WithLabelValues(stageDrive).Inc()
		return err
	}

	workers := Spawn(SpawnConfig{
		Channels:  plan.Channels,
		BasePort:  plan.Port,
		Address:   plan.Address,
		Pump:      plan.Pump,
		Radio:     plan.Radio,
		OnFailure: o.workerFailed,
		OnStarted: o.workerStarted,
		Logger:    o.logger,
	}, o.newWorker)

	o.ready.Store(true)
	o.logger.Info("transceiver started", "channels", len(workers), "port", plan.Port)
	o.publish(mq.Event{Type: mq.EventStarted, Channels: len(workers), Port: plan.Port})

	seq := NewSequencer(SequencerConfig{
		PollInterval:  o.pollInterval,
		GraceInterval: o.graceInterval,
		OnTransition:  o.transition,
		Logger:        o.logger,
	})
	seq.Run(ctx, o.flag, Resources{
		Device:  dev,
		Radio:   plan.Radio,
		Pump:    plan.Pump,
		Workers: workers,
	})

	o.publish(mq.Event{Type: mq.EventStopped, State: StateTornDown.String()})

	if failure := o.failure.Load(); failure != nil {
		return fmt.Errorf("%w: %w", ErrWorkerFailed, *failure)
	}
	return nil
}

func (o *Orchestrator) installSignals() (*shutdown.Handler, error) {
	if o.notify != nil {
		return shutdown.InstallWith(o.flag, o.notify)
	}
	return shutdown.Install(o.flag)
}

// workerFailed запоминает первый сбой и поднимает флаг остановки.
func (o *Orchestrator) workerFailed(err error) {
	o.failure.CompareAndSwap(nil, &err)
	o.flag.Raise()
}

func (o *Orchestrator) workerStarted(cfg trx.Config) {
	ch := cfg.Channel
	o.publish(mq.Event{
		Type:    mq.EventChannelStarted,
		Channel: &ch,
		Port:    cfg.Port,
		Primary: cfg.Primary,
	})
}

func (o *Orchestrator) transition(state State) {
	o.state.Store(int32(state))
	if state != StateRunning {
		o.ready.Store(false)
	}
	if state == StateStopping {
		o.publish(mq.Event{Type: mq.EventStopping, State: state.String()})
	}
	if o.onState != nil {
		o.onState(state)
	}
}

// publish отправляет событие, если публикатор настроен. Ошибки только
// логируются.
func (o *Orchestrator) publish(ev mq.Event) {
	if o.publisher == nil {
		return
	}
	ev.InstanceID = o.instanceID

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := o.publisher.Publish(ctx, ev); err != nil {
		o.logger.Warn("failed to publish lifecycle event", "type", ev.Type, "error", err)
	}
}

func (o *Orchestrator) closeQuiet(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		o.logger.Warn("failed to close "+name, "error", err)
	}
}
