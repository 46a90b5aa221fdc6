package errors

import "errors"

// Custom application errors
var (
	ErrInvalidConfig  = errors.New("invalid configuration")  // Bad environment value, flag or stored setting
	ErrStoreOperation = errors.New("settings store failure") // Reading or writing the settings store failed
	ErrAlertDelivery  = errors.New("alert delivery failed")  // One or more alert sinks failed
	ErrRateLimited    = errors.New("alert rate limited")     // Remote sink skipped because of its rate limit
	ErrUnknownCommand = errors.New("unknown command")        // Command tag not recognised
	ErrStartup        = errors.New("startup failed")         // Required resource unavailable at startup
)
