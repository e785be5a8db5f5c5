// Package logger contains the leveled logger used for diagnostics. The engine
// stays silent by default; callers opt into output by providing their own
// implementation or raising the level of the default one.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level defines log levels.
type Level int

const (
	// DEBUG displays detailed evaluation information.
	DEBUG Level = iota
	// INFO displays general information.
	INFO
	// WARN displays warnings.
	WARN
	// ERROR displays errors only.
	ERROR
	// OFF disables logging.
	OFF
)

// String returns the string representation of a log level.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case OFF:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// Logger defines the basic methods for logging.
type Logger interface {
	// Debug records debug level logs.
	Debug(format string, args ...any)
	// Info records info level logs.
	Info(format string, args ...any)
	// Warn records warning level logs.
	Warn(format string, args ...any)
	// Error records error level logs.
	Error(format string, args ...any)
	// SetLevel sets the log level.
	SetLevel(level Level)
}

type defaultLogger struct {
	level  Level
	logger *log.Logger
}

// New returns a logger writing to stderr at the given level.
func New(level Level) Logger {
	return NewWithOutput(level, os.Stderr)
}

// NewWithOutput returns a logger writing to the given output at the given
// level.
func NewWithOutput(level Level, out io.Writer) Logger {
	return &defaultLogger{
		level:  level,
		logger: log.New(out, "", log.LstdFlags),
	}
}

// Discard returns a logger that drops everything. It is the default used by
// the engine.
func Discard() Logger {
	return NewWithOutput(OFF, io.Discard)
}

func (d *defaultLogger) log(level Level, format string, args ...any) {
	if level < d.level {
		return
	}
	d.logger.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

// Debug implements [Logger].
func (d *defaultLogger) Debug(format string, args ...any) {
	d.log(DEBUG, format, args...)
}

// Info implements [Logger].
func (d *defaultLogger) Info(format string, args ...any) {
	d.log(INFO, format, args...)
}

// Warn implements [Logger].
func (d *defaultLogger) Warn(format string, args ...any) {
	d.log(WARN, format, args...)
}

// Error implements [Logger].
func (d *defaultLogger) Error(format string, args ...any) {
	d.log(ERROR, format, args...)
}

// SetLevel implements [Logger].
func (d *defaultLogger) SetLevel(level Level) {
	d.level = level
}
