package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger defines the interface for logging messages.
type Logger interface {
	Error(msg string, err error)
	Warn(msg string)
	Info(msg string)
	Debug(msg string)
}

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

type zeroLogger struct {
	zl zerolog.Logger
}

// New creates a logger writing human readable lines to w at the given level.
// A nil writer logs to stderr. Unknown levels fall back to info.
func New(w io.Writer, level string) Logger {
	if w == nil {
		w = os.Stderr
	}
	zerolog.ErrorFieldName = "err"
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: timeFormat, NoColor: !isTerminal(w)}
	zl := zerolog.New(cw).Level(ParseLevel(level)).With().Timestamp().Logger()
	return &zeroLogger{zl: zl}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &zeroLogger{zl: zerolog.Nop()}
}

// ParseLevel maps debug|info|warn|error to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Error logs an error message. err may be nil.
func (l *zeroLogger) Error(msg string, err error) {
	e := l.zl.Error()
	if err != nil {
		e = e.Err(err)
	}
	e.Msg(msg)
}

// Warn logs a warning message.
func (l *zeroLogger) Warn(msg string) {
	l.zl.Warn().Msg(msg)
}

// Info logs an informational message.
func (l *zeroLogger) Info(msg string) {
	l.zl.Info().Msg(msg)
}

// Debug logs a debug message.
func (l *zeroLogger) Debug(msg string) {
	l.zl.Debug().Msg(msg)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

