package orchestrator

// State — состояние Sequencer.
//
// Жизненный цикл:
//
//	RUNNING → STOPPING → DRAINING → TORN_DOWN
type State int32

const (
	// StateRunning — воркеры работают, флаг остановки не поднят.
	StateRunning State = iota

	// StateStopping — воркерам отправляется запрос остановки.
	StateStopping

	// StateDraining — ожидание выхода воркеров.
	StateDraining

	// StateTornDown — все ресурсы освобождены.
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateDraining:
		return "DRAINING"
	case StateTornDown:
		return "TORN_DOWN"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal возвращает true для финального состояния.
func (s State) IsTerminal() bool {
	return s == StateTornDown
}
