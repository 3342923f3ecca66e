// SPDX-License-Identifier: MPL-2.0

package inference

import (
	"errors"
	"fmt"
)

// Logback levels accepted by the inference CLI.
const (
	LogLevelOff   LogLevel = "OFF"
	LogLevelError LogLevel = "ERROR"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelTrace LogLevel = "TRACE"
	LogLevelAll   LogLevel = "ALL"

	// DefaultLogLevel matches the level InferenceCli falls back to.
	DefaultLogLevel = LogLevelInfo
)

// ErrInvalidLogLevel is the sentinel error wrapped by InvalidLogLevelError.
var ErrInvalidLogLevel = errors.New("invalid log level")

type (
	// LogLevel is a logback level name passed through to the Java process.
	// Matching is case-sensitive, like the original launcher.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel is not one of LogLevels().
	InvalidLogLevelError struct {
		Value LogLevel
	}
)

// LogLevels returns the accepted levels from least to most verbose.
func LogLevels() []LogLevel {
	return []LogLevel{
		LogLevelOff, LogLevelError, LogLevelWarn, LogLevelInfo,
		LogLevelDebug, LogLevelTrace, LogLevelAll,
	}
}

// Validate returns an *InvalidLogLevelError if l is not a known level.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelOff, LogLevelError, LogLevelWarn, LogLevelInfo,
		LogLevelDebug, LogLevelTrace, LogLevelAll:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

// String returns the level name.
func (l LogLevel) String() string { return string(l) }

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("log-level: %q not in allowed log-levels: [%s]", e.Value, joinValues(LogLevels()))
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }
