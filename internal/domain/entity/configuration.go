package entity

import (
	"fmt"
	"time"

	"breakreminder/internal/domain/constant"
)

// Configuration holds the two mutable scheduling parameters.
type Configuration struct {
	EventsPerHour   int `json:"events_per_hour"`
	LeadTimeMinutes int `json:"lead_time_minutes"`
}

// DefaultConfiguration is used when the store has no value.
func DefaultConfiguration() Configuration {
	return Configuration{
		EventsPerHour:   constant.DefaultEventsPerHour,
		LeadTimeMinutes: constant.DefaultLeadTimeMinutes,
	}
}

// Spacing is the distance between two boundaries within an hour.
// EventsPerHour below 1 counts as 1 and above 60 as 60.
func (c Configuration) Spacing() time.Duration {
	n := c.EventsPerHour
	if n < 1 {
		n = 1
	}
	if n > 60 {
		n = 60
	}
	return time.Duration(60/n) * time.Minute
}

// LeadTime returns the lead time as a duration.
func (c Configuration) LeadTime() time.Duration {
	if c.LeadTimeMinutes < 0 {
		return 0
	}
	return time.Duration(c.LeadTimeMinutes) * time.Minute
}

// NextFrequency returns a copy with EventsPerHour advanced to the next value
// of constant.FrequencyCycle.
func (c Configuration) NextFrequency() Configuration {
	c.EventsPerHour = nextInCycle(constant.FrequencyCycle, c.EventsPerHour)
	return c
}

// NextLeadTime returns a copy with LeadTimeMinutes advanced to the next value
// of constant.LeadTimeCycle.
func (c Configuration) NextLeadTime() Configuration {
	c.LeadTimeMinutes = nextInCycle(constant.LeadTimeCycle, c.LeadTimeMinutes)
	return c
}

func (c Configuration) String() string {
	return fmt.Sprintf("%d/hour, %d min lead", c.EventsPerHour, c.LeadTimeMinutes)
}

// nextInCycle returns the element after v, wrapping around. A value not in
// the cycle restarts it.
func nextInCycle(cycle []int, v int) int {
	for i, x := range cycle {
		if x == v {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}
