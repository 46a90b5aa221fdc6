package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestLoggerWritesAboveLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("visible warn")
	log.Error("visible error", errors.New("boom"))
	log.Error("error without cause", nil)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible warn")
	assert.Contains(t, out, "visible error")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "error without cause")
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.Info("nothing")
		log.Error("nothing", errors.New("x"))
	})
}
