package trx

import "errors"

// Ошибки воркера.
var (
	// ErrNoBurstQueue — drive loop не знает канал воркера.
	ErrNoBurstQueue = errors.New("no burst queue for channel")

	// ErrPumpGone — очередь канала закрылась до запроса остановки.
	ErrPumpGone = errors.New("drive loop stopped under running worker")

	// ErrChannelOutOfRange — канал вне радиоинтерфейса.
	ErrChannelOutOfRange = errors.New("channel out of radio interface range")

	// ErrWorkerClosed — воркер уже закрыт.
	ErrWorkerClosed = errors.New("worker closed")
)
