package radio

import (
	"context"
	"sync/atomic"
)

// Interface — многоканальный радиоинтерфейс поверх Device.
//
// Не владеет устройством: Close интерфейса не закрывает Device.
type Interface struct {
	dev    Device
	chans  int
	closed atomic.Bool
}

// NewInterface создаёт интерфейс на chans каналов.
func NewInterface(dev Device, chans int) *Interface {
	return &Interface{dev: dev, chans: chans}
}

// Channels возвращает число каналов.
func (r *Interface) Channels() int {
	return r.chans
}

// ReadBlock читает очередной блок с устройства.
func (r *Interface) ReadBlock(ctx context.Context) (Block, error) {
	if r.closed.Load() {
		return Block{}, ErrInterfaceClosed
	}
	return r.dev.Read(ctx, r.chans)
}

// Close закрывает интерфейс. Повторный вызов возвращает ErrInterfaceClosed.
func (r *Interface) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return ErrInterfaceClosed
	}
	return nil
}
