package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrWorkerFailed — воркер упал после старта, процесс остановлен.
	ErrWorkerFailed = errors.New("channel worker failed")

	// ErrAlreadyRunning — Run вызван повторно.
	ErrAlreadyRunning = errors.New("orchestrator already running")
)
