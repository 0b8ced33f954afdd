package config

import (
	"errors"
	"fmt"
	"log/slog"

	slogkit "github.com/italypaleale/faultkit/slog"
)

// ConfigError is a configuration error.
// Msg describes what was being configured; the wrapped error is the cause.
type ConfigError struct {
	err error
	msg string
}

// NewConfigError returns a new ConfigError.
// The err argument can be an error, a string, a fmt.Stringer, or nil.
func NewConfigError(err any, msg string) *ConfigError {
	var cause error
	switch x := err.(type) {
	case error:
		cause = x
	case string:
		cause = errors.New(x)
	case fmt.Stringer:
		cause = errors.New(x.String())
	case nil:
		cause = nil
	default:
		// Indicates a development-time error
		panic("Invalid type for parameter 'err'")
	}
	return &ConfigError{
		err: cause,
		msg: msg,
	}
}

// Error implements the error interface.
func (e ConfigError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.err.Error() + ": " + e.msg
}

// Unwrap returns the cause of the error.
func (e ConfigError) Unwrap() error {
	return e.err
}

// LogFatal logs the error at the critical level and exits the process.
func (e ConfigError) LogFatal(log *slog.Logger) {
	slogkit.FatalError(log, e.msg, e.err)
}
