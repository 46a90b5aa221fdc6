package service

import (
	"context"

	"breakreminder/internal/domain/entity"
)

// SettingService owns the in-memory Configuration and writes every change
// through to the settings store.
type SettingService interface {
	// Load reads the configuration from the store. Absent or malformed values
	// fall back to their defaults; store failures are logged, never returned.
	Load(ctx context.Context) entity.Configuration
	// Current returns the in-memory configuration.
	Current() entity.Configuration
	// CycleFrequency advances the events per hour and persists it.
	CycleFrequency(ctx context.Context) (entity.Configuration, error)
	// CycleLeadTime advances the lead time and persists it.
	CycleLeadTime(ctx context.Context) (entity.Configuration, error)
	// Reload re-reads the store and reports whether the configuration changed.
	Reload(ctx context.Context) (entity.Configuration, bool)
}
