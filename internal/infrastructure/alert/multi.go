package alert

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"breakreminder/internal/domain/entity"
	appErrors "breakreminder/internal/pkg/errors"
)

// Multi fans an alert out to every registered sink. A failing or panicking
// sink does not keep the others from firing.
type Multi struct {
	mu    sync.RWMutex
	names []string
	sinks []Sink
}

// NewMulti creates an empty fan-out sink.
func NewMulti() *Multi {
	return &Multi{}
}

// Add registers sink under name.
func (m *Multi) Add(name string, sink Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append(m.names, name)
	m.sinks = append(m.sinks, sink)
}

// Names lists the registered sinks in registration order.
func (m *Multi) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.names...)
}

// Fire delivers alert to every sink concurrently and joins their errors in
// registration order. Delivery errors are wrapped with ErrAlertDelivery; rate
// limit errors are passed through unchanged.
func (m *Multi) Fire(ctx context.Context, alert entity.Alert) error {
	m.mu.RLock()
	names := m.names
	sinks := m.sinks
	m.mu.RUnlock()

	results := make([]error, len(sinks))
	var wg sync.WaitGroup
	for i, sink := range sinks {
		wg.Add(1)
		go func(i int, sink Sink) {
			defer wg.Done()
			results[i] = fireOne(ctx, sink, alert)
		}(i, sink)
	}
	wg.Wait()

	var errs []error
	for i, err := range results {
		switch {
		case err == nil:
		case errors.Is(err, appErrors.ErrRateLimited):
			errs = append(errs, err)
		default:
			errs = append(errs, fmt.Errorf("%w: %s: %v", appErrors.ErrAlertDelivery, names[i], err))
		}
	}
	return errors.Join(errs...)
}

func fireOne(ctx context.Context, sink Sink, alert entity.Alert) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return sink.Fire(ctx, alert)
}
