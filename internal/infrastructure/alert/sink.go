// Package alert holds the local alert sinks and the wrappers that combine
// and throttle sinks.
package alert

import (
	"context"

	"breakreminder/internal/domain/entity"
)

// Sink delivers one alert.
type Sink interface {
	Fire(ctx context.Context, alert entity.Alert) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, alert entity.Alert) error

func (f SinkFunc) Fire(ctx context.Context, alert entity.Alert) error { return f(ctx, alert) }
