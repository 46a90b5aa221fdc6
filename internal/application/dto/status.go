package dto

import (
	"time"

	"breakreminder/internal/domain/entity"
)

// ConfigurationResponse is the DTO for the scheduling parameters.
type ConfigurationResponse struct {
	EventsPerHour   int `json:"events_per_hour"`
	LeadTimeMinutes int `json:"lead_time_minutes"`
}

// ToConfigurationResponse converts an entity.Configuration to its DTO.
func ToConfigurationResponse(c entity.Configuration) ConfigurationResponse {
	return ConfigurationResponse{
		EventsPerHour:   c.EventsPerHour,
		LeadTimeMinutes: c.LeadTimeMinutes,
	}
}

// StatusResponse is a read-only snapshot of the scheduling loop.
type StatusResponse struct {
	State         string                `json:"state"`
	NextAlert     *time.Time            `json:"next_alert,omitempty"`
	Configuration ConfigurationResponse `json:"configuration"`
	Fired         uint64                `json:"fired"`
	Rescheduled   uint64                `json:"rescheduled"`
	AlertFailures uint64                `json:"alert_failures"`
}

// CommandResponse is returned after a command was applied.
type CommandResponse struct {
	Command       string                `json:"command"`
	Configuration ConfigurationResponse `json:"configuration"`
	Message       string                `json:"message,omitempty"`
}
