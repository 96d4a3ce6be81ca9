package radio

import (
	"context"
	"fmt"
)

// Mode — режим работы устройства, определяемый при открытии.
type Mode int

const (
	// ModeUnknown — режим не определён.
	ModeUnknown Mode = iota

	// ModeNormal — прямая частота дискретизации.
	ModeNormal

	// ModeResamp — устройство требует передискретизации.
	ModeResamp
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeResamp:
		return "resamp"
	default:
		return "unknown"
	}
}

// BurstLen — отсчётов в одном burst.
const BurstLen = 148

// Block — по одному burst на канал за один такт устройства.
type Block struct {
	// FN — номер кадра такта.
	FN uint32

	// TN — номер тайм-слота внутри кадра (0..7).
	TN uint8

	// Bursts — Bursts[i] относится к каналу i.
	Bursts [][]complex64
}

// Device — физическое или виртуальное радиоустройство.
type Device interface {
	// Open открывает устройство и возвращает его режим.
	Open(args string) (Mode, error)

	// Read блокируется до следующего такта и возвращает блок на chans каналов.
	Read(ctx context.Context, chans int) (Block, error)

	// Close закрывает устройство.
	Close() error
}

// Bootstrap открывает dev с args и проверяет режим.
//
// Различает ErrDeviceOpenFailed (устройство не открылось) и
// ErrUnsupportedMode (открылось, но режим не ModeNormal). Во втором
// случае устройство остаётся открытым: его закрывает владелец.
func Bootstrap(dev Device, args string) (Mode, error) {
	mode, err := dev.Open(args)
	if err != nil {
		return ModeUnknown, fmt.Errorf("%w: %w", ErrDeviceOpenFailed, err)
	}

	switch mode {
	case ModeNormal:
		return mode, nil
	default:
		return mode, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
}
