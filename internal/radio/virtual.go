package radio

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Период тайм-слота GSM: 15/26 мс.
const slotPeriod = 576923 * time.Nanosecond

// Гиперкадр GSM: номер кадра берётся по модулю.
const hyperframe = 2715648

// VirtualDevice — программное устройство без оборудования.
//
// Аргументы открытия — пары key=value через запятую:
//
//	mode=normal|resamp   режим, который сообщит Open (по умолчанию normal)
//	tick=<duration>      период такта (по умолчанию период тайм-слота)
//	noise=<float>        амплитуда шума в bursts (по умолчанию 0.01)
type VirtualDevice struct {
	mu     sync.Mutex
	open   bool
	mode   Mode
	tick   time.Duration
	noise  float32
	ticker *time.Ticker

	fn uint32
	tn uint8
}

// NewVirtualDevice создаёт закрытое виртуальное устройство.
func NewVirtualDevice() *VirtualDevice {
	return &VirtualDevice{}
}

// Open разбирает args и открывает устройство.
func (d *VirtualDevice) Open(args string) (Mode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		return ModeUnknown, ErrDeviceAlreadyOpen
	}

	mode := ModeNormal
	tick := slotPeriod
	noise := float32(0.01)

	for _, kv := range strings.Split(args, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return ModeUnknown, fmt.Errorf("bad device argument %q", kv)
		}

		switch key {
		case "mode":
			switch value {
			case "normal":
				mode = ModeNormal
			case "resamp":
				mode = ModeResamp
			default:
				return ModeUnknown, fmt.Errorf("unknown mode %q", value)
			}
		case "tick":
			dur, err := time.ParseDuration(value)
			if err != nil || dur <= 0 {
				return ModeUnknown, fmt.Errorf("bad tick %q", value)
			}
			tick = dur
		case "noise":
			var f float32
			if _, err := fmt.Sscanf(value, "%g", &f); err != nil {
				return ModeUnknown, fmt.Errorf("bad noise %q", value)
			}
			noise = f
		default:
			return ModeUnknown, fmt.Errorf("unknown device argument %q", key)
		}
	}

	d.open = true
	d.mode = mode
	d.tick = tick
	d.noise = noise
	d.ticker = time.NewTicker(tick)

	return mode, nil
}

// Read ждёт следующий такт и возвращает блок шума на chans каналов.
func (d *VirtualDevice) Read(ctx context.Context, chans int) (Block, error) {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return Block{}, ErrDeviceClosed
	}
	ticker := d.ticker
	d.mu.Unlock()

	select {
	case <-ctx.Done():
		return Block{}, ctx.Err()
	case <-ticker.C:
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return Block{}, ErrDeviceClosed
	}

	block := Block{FN: d.fn, TN: d.tn, Bursts: make([][]complex64, chans)}
	for i := range block.Bursts {
		burst := make([]complex64, BurstLen)
		for j := range burst {
			burst[j] = complex(d.noise*(rand.Float32()*2-1), d.noise*(rand.Float32()*2-1))
		}
		block.Bursts[i] = burst
	}

	d.tn++
	if d.tn == 8 {
		d.tn = 0
		d.fn = (d.fn + 1) % hyperframe
	}

	return block, nil
}

// Close останавливает устройство.
func (d *VirtualDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return ErrDeviceClosed
	}
	d.open = false
	d.ticker.Stop()
	return nil
}
