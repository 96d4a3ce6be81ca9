package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/justforname/osmo-trx/internal/radio"
	"github.com/justforname/osmo-trx/internal/telemetry"
)

// Default configuration values.
const (
	defaultQueueSize     = 64
	defaultClockInterval = time.Second
	readRetryDelay       = 10 * time.Millisecond
)

// Burst — burst одного канала в один такт.
type Burst struct {
	FN      uint32
	TN      uint8
	Samples []complex64
}

// Pump — общий sample pump, через который работают все каналы.
//
// Воркеры только читают Bursts и Clock; Init и Close вызывает
// оркестратор.
type Pump interface {
	// Init запускает pump. Ошибка фатальна для процесса.
	Init() error

	// Bursts возвращает очередь канала ch. Закрывается в Close.
	Bursts(ch int) <-chan Burst

	// Clock возвращает номер последнего кадра.
	Clock() uint32

	// Close останавливает pump и закрывает очереди.
	Close() error
}

// BlockReader — источник блоков, обычно *radio.Interface.
type BlockReader interface {
	ReadBlock(ctx context.Context) (radio.Block, error)
}

// Config — конфигурация DriveLoop.
type Config struct {
	// Port и Address — адрес получателя clock indications.
	Port    int
	Address string

	// Radio — источник блоков.
	Radio BlockReader

	// Channels — число каналов.
	Channels int

	// QueueSize — буфер bursts на канал (default: 64).
	QueueSize int

	// ClockInterval — период IND CLOCK (default: 1s).
	ClockInterval time.Duration

	Logger *slog.Logger
}

// DriveLoop — реализация Pump поверх радиоинтерфейса.
type DriveLoop struct {
	port          int
	address       string
	radio         BlockReader
	clockInterval time.Duration
	logger        *slog.Logger

	queues []chan Burst
	clock  atomic.Uint32
	conn   *net.UDPConn

	// Lifecycle
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	closed     atomic.Bool
}

// NewDriveLoop создаёт DriveLoop. Очереди каналов создаются сразу.
func NewDriveLoop(cfg Config) *DriveLoop {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	clockInterval := cfg.ClockInterval
	if clockInterval <= 0 {
		clockInterval = defaultClockInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	queues := make([]chan Burst, max(cfg.Channels, 0))
	for i := range queues {
		queues[i] = make(chan Burst, queueSize)
	}

	return &DriveLoop{
		port:          cfg.Port,
		address:       cfg.Address,
		radio:         cfg.Radio,
		clockInterval: clockInterval,
		logger:        logger,
		queues:        queues,
	}
}

// Init открывает clock-сокет и запускает цикл.
func (d *DriveLoop) Init() error {
	if d.closed.Load() {
		return ErrPumpClosed
	}
	if d.radio == nil {
		return errors.New("no radio interface")
	}
	if len(d.queues) == 0 {
		return errors.New("no channels")
	}

	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(d.address, strconv.Itoa(d.port)))
	if err != nil {
		return fmt.Errorf("resolve clock address: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return fmt.Errorf("open clock socket: %w", err)
	}
	d.conn = conn

	ctx, cancel := context.WithCancel(context.Background())
	d.cancelFunc = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(ctx)
	}()

	d.logger.Info("drive loop started",
		"clock_addr", addr.String(),
		"channels", len(d.queues),
	)
	return nil
}

// Bursts возвращает очередь канала ch или nil для несуществующего канала.
func (d *DriveLoop) Bursts(ch int) <-chan Burst {
	if ch < 0 || ch >= len(d.queues) {
		return nil
	}
	return d.queues[ch]
}

// Clock возвращает номер последнего кадра.
func (d *DriveLoop) Clock() uint32 {
	return d.clock.Load()
}

// Close останавливает цикл, закрывает сокет и очереди каналов.
func (d *DriveLoop) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return ErrPumpClosed
	}

	if d.cancelFunc != nil {
		d.cancelFunc()
	}
	// Ждём завершения цикла: после этого в очереди никто не пишет
	d.wg.Wait()

	for _, q := range d.queues {
		close(q)
	}

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			return fmt.Errorf("close clock socket: %w", err)
		}
	}

	d.logger.Info("drive loop stopped")
	return nil
}

// run — основной цикл: чтение блоков и раздача по каналам.
func (d *DriveLoop) run(ctx context.Context) {
	lastClock := time.Now()

	for {
		block, err := d.radio.ReadBlock(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, radio.ErrInterfaceClosed) {
				return
			}
			d.logger.Warn("radio read failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(readRetryDelay):
			}
			continue
		}

		d.clock.Store(block.FN)
		d.dispatch(block)

		if time.Since(lastClock) >= d.clockInterval {
			d.sendClock(block.FN)
			lastClock = time.Now()
		}
	}
}

// dispatch раскладывает блок по очередям каналов без блокировки.
func (d *DriveLoop) dispatch(block radio.Block) {
	for i, q := range d.queues {
		if i >= len(block.Bursts) {
			return
		}
		label := strconv.Itoa(i)
		select {
		case q <- Burst{FN: block.FN, TN: block.TN, Samples: block.Bursts[i]}:
			telemetry.PumpBursts.WithLabelValues(label).Inc()
		default:
			telemetry.PumpDropped.WithLabelValues(label).Inc()
		}
	}
}

// sendClock отправляет clock indication. Отсутствие получателя не ошибка.
func (d *DriveLoop) sendClock(fn uint32) {
	msg := fmt.Sprintf("IND CLOCK %d", fn)
	if _, err := d.conn.Write([]byte(msg)); err != nil {
		d.logger.Debug("clock indication not delivered", "fn", fn, "error", err)
	}
}
