package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/justforname/osmo-trx/internal/config"
	"github.com/justforname/osmo-trx/internal/drive"
	"github.com/justforname/osmo-trx/internal/mq"
	"github.com/justforname/osmo-trx/internal/radio"
	"github.com/justforname/osmo-trx/internal/shutdown"
	"github.com/justforname/osmo-trx/internal/trx"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// journal — общий журнал вызовов фейков.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

func (j *journal) snapshot() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// index возвращает позицию первой записи entry или -1.
func (j *journal) index(entry string) int {
	for i, e := range j.snapshot() {
		if e == entry {
			return i
		}
	}
	return -1
}

// memStore — хранилище конфигурации в памяти.
type memStore struct {
	mu      sync.Mutex
	values  map[string]string
	failSet error
	closed  bool
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{
		config.KeyLogLevel: "INFO",
		config.KeyTRXPort:  "5700",
		config.KeyTRXIP:    "127.0.0.1",
	}}
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.values[key] = value
	return nil
}

func (m *memStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memStore) GetString(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", config.ErrKeyNotFound, key)
	}
	return v, nil
}

func (m *memStore) GetInt(ctx context.Context, key string) (int, error) {
	s, err := m.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", config.ErrTypeMismatch, key)
	}
	return n, nil
}

func (m *memStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

// fakeDevice — радиоустройство без отсчётов.
type fakeDevice struct {
	j       *journal
	mode    radio.Mode
	openErr error
	args    string
}

func (d *fakeDevice) Open(args string) (radio.Mode, error) {
	d.args = args
	if d.openErr != nil {
		return radio.ModeUnknown, d.openErr
	}
	return d.mode, nil
}

func (d *fakeDevice) Read(ctx context.Context, _ int) (radio.Block, error) {
	<-ctx.Done()
	return radio.Block{}, ctx.Err()
}

func (d *fakeDevice) Close() error {
	d.j.add("close device")
	return nil
}

// fakePump — Pump без отсчётов.
type fakePump struct {
	j       *journal
	cfg     drive.Config
	initErr error
}

func (p *fakePump) Init() error                   { return p.initErr }
func (p *fakePump) Bursts(int) <-chan drive.Burst { return nil }
func (p *fakePump) Clock() uint32                 { return 0 }

func (p *fakePump) Close() error {
	p.j.add("close pump")
	return nil
}

// fakeWorker записывает вызовы в журнал. stuck — не выходит до Close.
type fakeWorker struct {
	j     *journal
	cfg   trx.Config
	stuck bool
	fail  error

	once sync.Once
	done chan struct{}
}

func (w *fakeWorker) Start() {
	w.j.add("start %d", w.cfg.Channel)
	if w.fail != nil {
		go w.cfg.OnFailure(w.fail)
	}
}

func (w *fakeWorker) Shutdown() {
	w.j.add("shutdown %d", w.cfg.Channel)
	if !w.stuck {
		w.once.Do(func() { close(w.done) })
	}
}

func (w *fakeWorker) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *fakeWorker) Close() error {
	w.j.add("close %d", w.cfg.Channel)
	w.once.Do(func() { close(w.done) })
	return nil
}

// fakePublisher запоминает события.
type fakePublisher struct {
	mu     sync.Mutex
	events []mq.Event
}

func (p *fakePublisher) Publish(_ context.Context, ev mq.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) types() []mq.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]mq.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func nopNotify(chan<- os.Signal, ...os.Signal) error { return nil }

// harness собирает Orchestrator из фейков и считает аллокации.
type harness struct {
	j       *journal
	store   *memStore
	device  *fakeDevice
	pump    *fakePump
	flag    *shutdown.Flag
	events  *fakePublisher
	stderr  *syncBuffer
	states  []State
	statesM sync.Mutex

	devices    int
	pumps      int
	storeOpens int

	workersMu sync.Mutex
	workers   []*fakeWorker
	stuck     map[int]bool
	failOn    map[int]error
}

func newHarness() *harness {
	j := &journal{}
	return &harness{
		j:      j,
		store:  newMemStore(),
		device: &fakeDevice{j: j, mode: radio.ModeNormal},
		pump:   &fakePump{j: j},
		flag:   &shutdown.Flag{},
		events: &fakePublisher{},
		stderr: &syncBuffer{},
		stuck:  map[int]bool{},
		failOn: map[int]error{},
	}
}

func (h *harness) config(channels int, args string) Config {
	return Config{
		Channels:      channels,
		DeviceArgs:    args,
		StoreLocation: "mem",
		OpenStore: func(context.Context, string) (config.Store, error) {
			h.storeOpens++
			return h.store, nil
		},
		NewDevice: func() radio.Device {
			h.devices++
			return h.device
		},
		NewPump: func(cfg drive.Config) drive.Pump {
			h.pumps++
			h.pump.cfg = cfg
			return h.pump
		},
		NewWorker: func(cfg trx.Config) Worker {
			w := &fakeWorker{
				j:     h.j,
				cfg:   cfg,
				stuck: h.stuck[cfg.Channel],
				fail:  h.failOn[cfg.Channel],
				done:  make(chan struct{}),
			}
			h.workersMu.Lock()
			h.workers = append(h.workers, w)
			h.workersMu.Unlock()
			return w
		},
		NewLogger:     func(string) *slog.Logger { return discardLogger() },
		Events:        func(*slog.Logger) EventPublisher { return h.events },
		Notify:        nopNotify,
		Flag:          h.flag,
		PollInterval:  5 * time.Millisecond,
		GraceInterval: 50 * time.Millisecond,
		Stderr:        h.stderr,
		OnState: func(s State) {
			h.statesM.Lock()
			h.states = append(h.states, s)
			h.statesM.Unlock()
		},
	}
}

func (h *harness) spawned() []*fakeWorker {
	h.workersMu.Lock()
	defer h.workersMu.Unlock()
	return append([]*fakeWorker(nil), h.workers...)
}

func (h *harness) seenStates() []State {
	h.statesM.Lock()
	defer h.statesM.Unlock()
	return append([]State(nil), h.states...)
}

// syncBuffer — bytes.Buffer, безопасный для конкурентной записи.
type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
