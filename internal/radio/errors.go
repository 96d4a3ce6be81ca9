package radio

import "errors"

// Ошибки радиоустройства.
var (
	// ErrDeviceOpenFailed — устройство не открылось.
	ErrDeviceOpenFailed = errors.New("device open failed")

	// ErrUnsupportedMode — устройство открылось в неподдерживаемом режиме.
	ErrUnsupportedMode = errors.New("unsupported device mode")

	// ErrDeviceAlreadyOpen — повторный Open без Close.
	ErrDeviceAlreadyOpen = errors.New("device already open")

	// ErrDeviceClosed — устройство не открыто или уже закрыто.
	ErrDeviceClosed = errors.New("device closed")

	// ErrInterfaceClosed — радиоинтерфейс закрыт.
	ErrInterfaceClosed = errors.New("radio interface closed")
)
