package orchestrator

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/justforname/osmo-trx/internal/shutdown"
	"github.com/justforname/osmo-trx/internal/telemetry"
)

// Default configuration values.
const (
	defaultPollInterval  = time.Second
	defaultGraceInterval = 2 * time.Second
)

// Resources — всё, что освобождает Sequencer, в порядке захвата.
type Resources struct {
	Device  io.Closer
	Radio   io.Closer
	Pump    io.Closer
	Workers []Worker
}

// SequencerConfig — конфигурация Sequencer.
type SequencerConfig struct {
	// PollInterval — период опроса флага остановки (default: 1s).
	PollInterval time.Duration

	// GraceInterval — общий дедлайн ожидания воркеров (default: 2s).
	GraceInterval time.Duration

	// OnTransition вызывается при каждой смене состояния.
	OnTransition func(State)

	Logger *slog.Logger
}

// Sequencer выполняет упорядоченную остановку.
type Sequencer struct {
	pollInterval  time.Duration
	graceInterval time.Duration
	onTransition  func(State)
	logger        *slog.Logger

	state atomic.Int32
}

// NewSequencer создаёт Sequencer в состоянии RUNNING.
func NewSequencer(cfg SequencerConfig) *Sequencer {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	graceInterval := cfg.GraceInterval
	if graceInterval <= 0 {
		graceInterval = defaultGraceInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Sequencer{
		pollInterval:  pollInterval,
		graceInterval: graceInterval,
		onTransition:  cfg.OnTransition,
		logger:        logger,
	}
}

// State возвращает текущее состояние.
func (s *Sequencer) State() State {
	return State(s.state.Load())
}

// Run ждёт поднятия flag и выполняет остановку.
func (s *Sequencer) Run(ctx context.Context, flag *shutdown.Flag, res Resources) {
	flag.Poll(ctx, s.pollInterval)
	s.Shutdown(res)
}

// Shutdown проводит RUNNING → STOPPING → DRAINING → TORN_DOWN.
//
// Повторный вызов ничего не делает.
func (s *Sequencer) Shutdown(res Resources) {
	if !s.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return
	}
	s.notify(StateStopping)
	s.logger.Info("shutting down transceivers", "workers", len(res.Workers))

	// Запрос остановки, старшие каналы первыми
	for i := len(res.Workers) - 1; i >= 0; i-- {
		res.Workers[i].Shutdown()
	}

	s.transition(StateDraining)
	forced := s.drain(res.Workers)

	s.teardown(res, forced)
	s.transition(StateTornDown)
	s.logger.Info("shutdown complete")
}

// drain ждёт воркеры с общим дедлайном. Возвращает индексы не успевших.
func (s *Sequencer) drain(workers []Worker) map[int]bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.graceInterval)
	defer cancel()

	forced := make(map[int]bool)
	for i, w := range workers {
		if err := w.Wait(ctx); err != nil {
			s.logger.Warn("worker did not stop within grace interval, forcing",
				"chan", i,
				"grace", s.graceInterval,
				"error", err,
			)
			forced[i] = true
			telemetry.WorkersForced.Inc()
		}
	}
	return forced
}

// teardown закрывает ресурсы в порядке, обратном захвату.
// Ошибки пишутся в лог и не прерывают остановку.
func (s *Sequencer) teardown(res Resources, forced map[int]bool) {
	for i := len(res.Workers) - 1; i >= 0; i-- {
		if err := res.Workers[i].Close(); err != nil {
			s.logger.Warn("failed to close worker", "chan", i, "forced", forced[i], "error", err)
		}
	}

	s.closeResource("drive loop", res.Pump)
	s.closeResource("radio interface", res.Radio)
	s.closeResource("device", res.Device)
}

func (s *Sequencer) closeResource(name string, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		s.logger.Warn("failed to close "+name, "error", err)
	}
}

func (s *Sequencer) transition(state State) {
	s.state.Store(int32(state))
	s.notify(state)
}

func (s *Sequencer) notify(state State) {
	telemetry.LifecycleState.Set(float64(state))
	s.logger.Debug("lifecycle state", "state", state.String())
	if s.onTransition != nil {
		s.onTransition(state)
	}
}
