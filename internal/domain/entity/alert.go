package entity

import (
	"fmt"
	"time"

	"breakreminder/internal/domain/constant"
)

// Alert describes one fire event handed to the alert sinks.
type Alert struct {
	Source constant.AlertSource
	At     time.Time
	Config Configuration
}

// Message is the human readable text remote sinks send.
func (a Alert) Message() string {
	if a.Source == constant.AlertSourceManual {
		return fmt.Sprintf("Break reminder test alert (%s)", a.At.Format(time.Kitchen))
	}
	return fmt.Sprintf("Time for a break! %d min until the next slot (%s)", a.Config.LeadTimeMinutes, a.At.Format(time.Kitchen))
}
