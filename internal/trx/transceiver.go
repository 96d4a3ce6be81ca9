package trx

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/justforname/osmo-trx/internal/drive"
	"github.com/justforname/osmo-trx/internal/radio"
	"github.com/justforname/osmo-trx/internal/telemetry"
)

const defaultStatsInterval = 10 * time.Second

// BurstSource — то, что воркер использует из drive loop.
type BurstSource interface {
	Bursts(ch int) <-chan drive.Burst
	Clock() uint32
}

// Config — конфигурация Transceiver.
type Config struct {
	Channel int
	Port    int
	Address string

	// Pump и Radio принадлежат оркестратору.
	Pump  BurstSource
	Radio *radio.Interface

	Primary bool

	// OnFailure вызывается один раз, если воркер упал после старта.
	OnFailure func(error)

	// StatsInterval — период отладочной статистики (default: 10s).
	StatsInterval time.Duration

	Logger *slog.Logger
}

// Stats — счётчики воркера.
type Stats struct {
	Bursts   uint64
	LastFN   uint32
	AvgPower float64
}

// Transceiver — воркер одного канала.
type Transceiver struct {
	channel       int
	port          int
	address       string
	pump          BurstSource
	radio         *radio.Interface
	primary       bool
	onFailure     func(error)
	statsInterval time.Duration
	label         string

	bursts atomic.Uint64
	lastFN atomic.Uint32
	power  atomic.Uint64 // float64 bits

	// Lifecycle
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	done       chan struct{}
	started    atomic.Bool
	stopping   atomic.Bool
	closed     atomic.Bool
	failOnce   sync.Once
}

// New создаёт Transceiver.
func New(cfg Config) *Transceiver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	statsInterval := cfg.StatsInterval
	if statsInterval <= 0 {
		statsInterval = defaultStatsInterval
	}

	onFailure := cfg.OnFailure
	if onFailure == nil {
		onFailure = func(error) {}
	}

	return &Transceiver{
		channel:       cfg.Channel,
		port:          cfg.Port,
		address:       cfg.Address,
		pump:          cfg.Pump,
		radio:         cfg.Radio,
		primary:       cfg.Primary,
		onFailure:     onFailure,
		statsInterval: statsInterval,
		label:         strconv.Itoa(cfg.Channel),
		logger:        telemetry.WithChannel(logger, cfg.Channel),
		done:          make(chan struct{}),
	}
}

// Channel возвращает номер канала.
func (t *Transceiver) Channel() int { return t.channel }

// Port возвращает порт канала.
func (t *Transceiver) Port() int { return t.port }

// Primary сообщает, является ли канал опорным.
func (t *Transceiver) Primary() bool { return t.primary }

// Start запускает цикл воркера.
func (t *Transceiver) Start() {
	if !t.started.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancelFunc = cancel

	t.logger.Info("starting transceiver",
		"port", t.port,
		"address", t.address,
		"primary", t.primary,
	)
	telemetry.WorkersRunning.Inc()

	go func() {
		defer close(t.done)
		defer telemetry.WorkersRunning.Dec()

		if err := t.run(ctx); err != nil {
			t.fail(err)
		}
	}()
}

// Shutdown запрашивает остановку и сразу возвращается.
func (t *Transceiver) Shutdown() {
	t.stopping.Store(true)
	if t.cancelFunc != nil {
		t.cancelFunc()
	}
}

// Wait ждёт выхода цикла или отмены ctx.
func (t *Transceiver) Wait(ctx context.Context) error {
	if !t.started.Load() {
		return nil
	}
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("chan %d: %w", t.channel, ctx.Err())
	}
}

// Close освобождает воркер. Если цикл ещё работает, он отменяется, но
// Close не ждёт его выхода.
func (t *Transceiver) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return ErrWorkerClosed
	}

	select {
	case <-t.done:
	default:
		if t.started.Load() {
			t.logger.Warn("closing transceiver that is still running")
			t.Shutdown()
		}
	}

	st := t.Stats()
	t.logger.Info("transceiver closed",
		"bursts", st.Bursts,
		"last_fn", st.LastFN,
	)
	return nil
}

// Stats возвращает снимок счётчиков.
func (t *Transceiver) Stats() Stats {
	return Stats{
		Bursts:   t.bursts.Load(),
		LastFN:   t.lastFN.Load(),
		AvgPower: loadFloat(&t.power),
	}
}

// run — основной цикл воркера.
func (t *Transceiver) run(ctx context.Context) error {
	if t.radio != nil && t.channel >= t.radio.Channels() {
		return fmt.Errorf("%w: chan %d of %d", ErrChannelOutOfRange, t.channel, t.radio.Channels())
	}

	queue := t.pump.Bursts(t.channel)
	if queue == nil {
		return fmt.Errorf("%w: %d", ErrNoBurstQueue, t.channel)
	}

	ticker := time.NewTicker(t.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("transceiver stopped")
			return nil

		case burst, ok := <-queue:
			if !ok {
				if t.stopping.Load() {
					return nil
				}
				return ErrPumpGone
			}
			t.handleBurst(burst)

		case <-ticker.C:
			st := t.Stats()
			t.logger.Debug("channel stats",
				"bursts", st.Bursts,
				"last_fn", st.LastFN,
				"avg_power", st.AvgPower,
				"pump_clock", t.pump.Clock(),
			)
		}
	}
}

// handleBurst учитывает burst. Primary-канал ведёт опорный номер кадра.
func (t *Transceiver) handleBurst(b drive.Burst) {
	t.bursts.Add(1)
	t.lastFN.Store(b.FN)
	telemetry.WorkerBursts.WithLabelValues(t.label).Inc()

	// экспоненциальное среднее мощности burst
	p := burstPower(b.Samples)
	prev := loadFloat(&t.power)
	storeFloat(&t.power, prev+(p-prev)/16)

	if t.primary {
		telemetry.ClockFrame.Set(float64(b.FN))
	}
}

// fail сообщает о сбое воркера наружу один раз.
func (t *Transceiver) fail(err error) {
	t.failOnce.Do(func() {
		t.logger.Error("transceiver failed", "error", err)
		t.onFailure(err)
	})
}
