package shutdown

import "errors"

// ErrSignalSetup — не удалось установить обработчики сигналов.
var ErrSignalSetup = errors.New("signal handler setup failed")
