package alert

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakreminder/internal/domain/constant"
	"breakreminder/internal/domain/entity"
	appErrors "breakreminder/internal/pkg/errors"
)

var testAlert = entity.Alert{
	Source: constant.AlertSourceSchedule,
	At:     time.Date(2024, 3, 4, 15, 5, 0, 0, time.UTC),
	Config: entity.DefaultConfiguration(),
}

func TestBellWritesCount(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewBell(&buf, 3).Fire(context.Background(), testAlert))
	assert.Equal(t, "\a\a\a", buf.String())

	buf.Reset()
	require.NoError(t, NewBell(&buf, 0).Fire(context.Background(), testAlert))
	assert.Empty(t, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestBellWriteError(t *testing.T) {
	assert.Error(t, NewBell(failingWriter{}, 1).Fire(context.Background(), testAlert))
}

func TestMultiFiresAllAndJoinsErrors(t *testing.T) {
	var (
		mu    sync.Mutex
		fired []string
	)
	record := func(name string, err error) Sink {
		return SinkFunc(func(context.Context, entity.Alert) error {
			mu.Lock()
			fired = append(fired, name)
			mu.Unlock()
			return err
		})
	}

	m := NewMulti()
	m.Add("bell", record("bell", nil))
	m.Add("line", record("line", errors.New("401 unauthorized")))
	m.Add("panicky", SinkFunc(func(context.Context, entity.Alert) error { panic("boom") }))
	m.Add("telegram", record("telegram", nil))

	err := m.Fire(context.Background(), testAlert)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrAlertDelivery)
	assert.Contains(t, err.Error(), "line")
	assert.Contains(t, err.Error(), "panicky")
	assert.ElementsMatch(t, []string{"bell", "line", "telegram"}, fired)
	assert.Equal(t, []string{"bell", "line", "panicky", "telegram"}, m.Names())
}

func TestMultiFiresSinksConcurrently(t *testing.T) {
	release := make(chan struct{})
	fastDone := make(chan struct{})

	m := NewMulti()
	m.Add("slow", SinkFunc(func(context.Context, entity.Alert) error {
		<-release
		return nil
	}))
	m.Add("fast", SinkFunc(func(context.Context, entity.Alert) error {
		close(fastDone)
		return nil
	}))

	done := make(chan error, 1)
	go func() { done <- m.Fire(context.Background(), testAlert) }()

	select {
	case <-fastDone:
	case <-time.After(2 * time.Second):
		t.Fatal("fast sink waited for the slow one")
	}
	close(release)
	assert.NoError(t, <-done)
}

func TestMultiEmptyAndHealthy(t *testing.T) {
	m := NewMulti()
	assert.NoError(t, m.Fire(context.Background(), testAlert))
	m.Add("ok", SinkFunc(func(context.Context, entity.Alert) error { return nil }))
	assert.NoError(t, m.Fire(context.Background(), testAlert))
}

func TestMultiPassesRateLimitThrough(t *testing.T) {
	m := NewMulti()
	m.Add("line", NewRateLimited("line", SinkFunc(func(context.Context, entity.Alert) error { return nil }), time.Hour))

	require.NoError(t, m.Fire(context.Background(), testAlert))
	err := m.Fire(context.Background(), testAlert)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrRateLimited)
	assert.NotErrorIs(t, err, appErrors.ErrAlertDelivery)
}

func TestRateLimited(t *testing.T) {
	calls := 0
	inner := SinkFunc(func(context.Context, entity.Alert) error {
		calls++
		return nil
	})

	limited := NewRateLimited("telegram", inner, time.Hour)
	require.NoError(t, limited.Fire(context.Background(), testAlert))
	err := limited.Fire(context.Background(), testAlert)
	assert.ErrorIs(t, err, appErrors.ErrRateLimited)
	assert.Equal(t, 1, calls)

	unlimited := NewRateLimited("telegram", inner, 0)
	for i := 0; i < 5; i++ {
		require.NoError(t, unlimited.Fire(context.Background(), testAlert))
	}
	assert.Equal(t, 6, calls)
}
