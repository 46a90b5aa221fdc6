package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakreminder/internal/domain/constant"
	"breakreminder/internal/domain/entity"
	"breakreminder/internal/pkg/logger"
)

func TestFireSendsMessage(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"hi"}}`))
	}))
	defer srv.Close()

	c, err := NewClient("123:abc", 42, srv.URL, logger.Nop())
	require.NoError(t, err)

	alert := entity.Alert{
		Source: constant.AlertSourceManual,
		At:     time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		Config: entity.DefaultConfiguration(),
	}
	require.NoError(t, c.Fire(context.Background(), alert))
	assert.True(t, strings.HasSuffix(path, "/sendMessage"), path)
}

func TestFireReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	c, err := NewClient("123:abc", 42, srv.URL, logger.Nop())
	require.NoError(t, err)
	assert.Error(t, c.Fire(context.Background(), entity.Alert{}))
}

func TestFireSkipsCancelledContext(t *testing.T) {
	c, err := NewClient("123:abc", 42, "http://127.0.0.1:1", logger.Nop())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Fire(ctx, entity.Alert{}), context.Canceled)
}

func TestFireReturnsWhenContextEnds(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient("123:abc", 42, srv.URL, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	err = c.Fire(ctx, entity.Alert{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(" ", 42, "", logger.Nop())
	assert.Error(t, err)
}
