package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики трансивера. Регистрируются в prometheus.DefaultRegisterer
// и отдаются на /metrics.
var (
	// StartupFailures — фатальные ошибки запуска по стадиям.
	StartupFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trx_startup_failures_total",
		Help: "Fatal startup failures by stage",
	}, []string{"stage"})

	// LifecycleState — текущее состояние ShutdownSequencer (0..3).
	LifecycleState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trx_lifecycle_state",
		Help: "Shutdown sequencer state: 0=running 1=stopping 2=draining 3=torn_down",
	})

	// WorkersRunning — число запущенных канальных воркеров.
	WorkersRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trx_workers_running",
		Help: "Number of channel workers currently running",
	})

	// WorkersForced — воркеры, не уложившиеся в grace interval.
	WorkersForced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trx_workers_forced_total",
		Help: "Workers force-closed after missing the shutdown grace interval",
	})

	// PumpBursts — bursts, переданные drive loop в канал.
	PumpBursts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trx_pump_bursts_total",
		Help: "Bursts delivered by the drive loop per channel",
	}, []string{"chan"})

	// PumpDropped — bursts, отброшенные из-за переполненного буфера канала.
	PumpDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trx_pump_dropped_bursts_total",
		Help: "Bursts dropped by the drive loop because the channel buffer was full",
	}, []string{"chan"})

	// WorkerBursts — bursts, обработанные воркером канала.
	WorkerBursts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trx_worker_bursts_total",
		Help: "Bursts consumed by channel workers",
	}, []string{"chan"})

	// ClockFrame — номер кадра опорного (primary) канала.
	ClockFrame = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trx_clock_frame_number",
		Help: "Frame number tracked by the primary channel",
	})
)
