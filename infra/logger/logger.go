package logger

import corelogger "github.com/kilianp07/tgcsim/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// Config selects the level and output format of the process logger.
type Config struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // json or console; empty follows APP_ENV
}

// New returns a Logger for the given component. The output format is detected
// via the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}
