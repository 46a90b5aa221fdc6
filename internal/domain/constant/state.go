package constant

// LoopState defines the lifecycle states of the scheduling loop.
type LoopState int

const (
	// StateIdle is the state before Run starts.
	StateIdle LoopState = iota
	// StateComputing is the state while the next alert time is derived.
	StateComputing
	// StateWaiting is the state while the loop sleeps until the next alert.
	StateWaiting
	// StateFiring is the state while the alert sink runs for a scheduled alert.
	StateFiring
	// StateRescheduling is the state after a wait was cancelled by a configuration change.
	StateRescheduling
	// StateStopped is terminal.
	StateStopped
)

func (s LoopState) Int() int {
	return int(s)
}

func (s LoopState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComputing:
		return "computing"
	case StateWaiting:
		return "waiting"
	case StateFiring:
		return "firing"
	case StateRescheduling:
		return "rescheduling"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
