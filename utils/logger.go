package utils

import (
	"fmt"
	"log"
	"os"
	"time"
)

// Logger wraps standard log with level-based output. A scope tag can be
// attached so each site adapter's lines are attributable.
type Logger struct {
	scope string
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
	debug *log.Logger
}

// NewLogger creates a new structured logger
func NewLogger() *Logger {
	flags := log.Lmsgprefix
	return &Logger{
		info:  log.New(os.Stdout, "[INFO]  ", flags),
		warn:  log.New(os.Stdout, "[WARN]  ", flags),
		error: log.New(os.Stderr, "[ERROR] ", flags),
		debug: log.New(os.Stdout, "[DEBUG] ", flags),
	}
}

// WithScope returns a copy of the logger that prefixes every line with the
// given component tag (e.g. "booking").
func (l *Logger) WithScope(scope string) *Logger {
	scoped := *l
	scoped.scope = scope
	return &scoped
}

func (l *Logger) prefix() string {
	if l.scope != "" {
		return fmt.Sprintf(" %s [%s] ", time.Now().Format("15:04:05"), l.scope)
	}
	return fmt.Sprintf(" %s ", time.Now().Format("15:04:05"))
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.info.Printf(l.prefix()+msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.warn.Printf(l.prefix()+msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.error.Printf(l.prefix()+msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.debug.Printf(l.prefix()+msg, args...)
}
