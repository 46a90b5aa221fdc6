package constant

// Outcome is the result of a single wait.
type Outcome int

const (
	// OutcomeFired means the wait ran to its target time.
	OutcomeFired Outcome = iota
	// OutcomeCancelled means a reschedule interrupted the wait; the loop recomputes.
	OutcomeCancelled
	// OutcomeStopped means the stop signal was raised; the loop exits.
	OutcomeStopped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFired:
		return "fired"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
