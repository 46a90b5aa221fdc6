package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	appErrors "breakreminder/internal/pkg/errors"
)

// Store drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

const (
	defaultFileStorePath   = "BreakReminder.txt"
	defaultSQLiteStorePath = "breakreminder.db"
	defaultHeartbeat       = "@every 30m"
	defaultAlertInterval   = 10 * time.Second
)

// Config holds everything the run command needs.
type Config struct {
	StoreDriver   string
	StorePath     string
	Watch         bool
	HTTPAddr      string
	Heartbeat     string
	Bells         int
	AlertInterval time.Duration
	Keyboard      bool
	LogLevel      string
	LogFile       string
	Line          LineConfig
	Telegram      TelegramConfig
}

// LineConfig enables the LINE push alert sink when ChannelToken and UserID
// are set. The SDK also requires ChannelSecret.
type LineConfig struct {
	ChannelSecret string
	ChannelToken  string
	UserID        string
}

// Enabled reports whether LINE alerts are configured.
func (c LineConfig) Enabled() bool { return c.ChannelToken != "" && c.UserID != "" }

// TelegramConfig enables the Telegram alert sink when Token and ChatID are set.
type TelegramConfig struct {
	Token  string
	ChatID int64
}

// Enabled reports whether Telegram alerts are configured.
func (c TelegramConfig) Enabled() bool { return c.Token != "" && c.ChatID != 0 }

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		StoreDriver:   DriverFile,
		Watch:         true,
		Heartbeat:     defaultHeartbeat,
		Bells:         1,
		AlertInterval: defaultAlertInterval,
		Keyboard:      true,
		LogLevel:      "info",
	}
}

// FromEnv reads the configuration from environment variables on top of Default.
// Malformed values are startup errors.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var err error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" || err != nil {
			return
		}
		b, perr := strconv.ParseBool(strings.TrimSpace(v))
		if perr != nil {
			err = fmt.Errorf("%w: %s=%q is not a boolean", appErrors.ErrInvalidConfig, key, v)
			return
		}
		*dst = b
	}

	str("BREAK_REMINDER_STORE_DRIVER", &cfg.StoreDriver)
	str("BREAK_REMINDER_STORE_PATH", &cfg.StorePath)
	boolean("BREAK_REMINDER_WATCH", &cfg.Watch)
	str("BREAK_REMINDER_HTTP_ADDR", &cfg.HTTPAddr)
	str("BREAK_REMINDER_HEARTBEAT", &cfg.Heartbeat)
	boolean("BREAK_REMINDER_KEYBOARD", &cfg.Keyboard)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FILE", &cfg.LogFile)
	str("CHANNEL_SECRET", &cfg.Line.ChannelSecret)
	str("CHANNEL_ACCESS_TOKEN", &cfg.Line.ChannelToken)
	str("MY_USER_ID", &cfg.Line.UserID)
	str("TELEGRAM_TOKEN", &cfg.Telegram.Token)
	if err != nil {
		return cfg, err
	}

	if v, ok := lookup("BREAK_REMINDER_BELLS"); ok && strings.TrimSpace(v) != "" {
		n, perr := strconv.Atoi(strings.TrimSpace(v))
		if perr != nil {
			return cfg, fmt.Errorf("%w: BREAK_REMINDER_BELLS=%q is not an integer", appErrors.ErrInvalidConfig, v)
		}
		cfg.Bells = n
	}
	if v, ok := lookup("BREAK_REMINDER_ALERT_INTERVAL"); ok && strings.TrimSpace(v) != "" {
		d, perr := time.ParseDuration(strings.TrimSpace(v))
		if perr != nil {
			return cfg, fmt.Errorf("%w: BREAK_REMINDER_ALERT_INTERVAL=%q: %v", appErrors.ErrInvalidConfig, v, perr)
		}
		cfg.AlertInterval = d
	}
	if v, ok := lookup("TELEGRAM_CHAT_ID"); ok && strings.TrimSpace(v) != "" {
		id, perr := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if perr != nil {
			return cfg, fmt.Errorf("%w: TELEGRAM_CHAT_ID=%q is not an integer", appErrors.ErrInvalidConfig, v)
		}
		cfg.Telegram.ChatID = id
	}
	return cfg, nil
}

// Validate checks the configuration and fills the driver specific store path.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverFile:
		if c.StorePath == "" {
			c.StorePath = defaultFileStorePath
		}
	case DriverSQLite:
		if c.StorePath == "" {
			c.StorePath = defaultSQLiteStorePath
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q (want %s or %s)", appErrors.ErrInvalidConfig, c.StoreDriver, DriverFile, DriverSQLite)
	}

	if c.Bells < 0 {
		return fmt.Errorf("%w: bells must not be negative, got %d", appErrors.ErrInvalidConfig, c.Bells)
	}
	if c.AlertInterval < 0 {
		return fmt.Errorf("%w: alert interval must not be negative, got %s", appErrors.ErrInvalidConfig, c.AlertInterval)
	}
	if c.Heartbeat != "" {
		if _, err := ParseCronSpec(c.Heartbeat); err != nil {
			return fmt.Errorf("%w: heartbeat %q: %v", appErrors.ErrInvalidConfig, c.Heartbeat, err)
		}
	}
	if (c.Line.ChannelToken == "") != (c.Line.UserID == "") {
		return fmt.Errorf("%w: CHANNEL_ACCESS_TOKEN and MY_USER_ID must be set together", appErrors.ErrInvalidConfig)
	}
	if c.Line.ChannelToken != "" && c.Line.ChannelSecret == "" {
		return fmt.Errorf("%w: CHANNEL_SECRET is required with CHANNEL_ACCESS_TOKEN", appErrors.ErrInvalidConfig)
	}
	if (c.Telegram.Token == "") != (c.Telegram.ChatID == 0) {
		return fmt.Errorf("%w: TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together", appErrors.ErrInvalidConfig)
	}
	return nil
}

// cronParser matches the parser cron.WithSeconds installs.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseCronSpec parses a heartbeat spec the same way the cron scheduler does.
func ParseCronSpec(spec string) (cron.Schedule, error) {
	return cronParser.Parse(spec)
}
