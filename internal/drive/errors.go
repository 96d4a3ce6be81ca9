package drive

import "errors"

// Ошибки плана каналов и drive loop.
var (
	// ErrChannelCountExceeded — число каналов вне 1..MaxChannels.
	ErrChannelCountExceeded = errors.New("channel count exceeded")

	// ErrPumpInitFailed — drive loop не инициализировался.
	ErrPumpInitFailed = errors.New("drive loop init failed")

	// ErrPumpClosed — drive loop уже закрыт.
	ErrPumpClosed = errors.New("drive loop closed")
)
