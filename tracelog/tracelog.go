// Package tracelog wraps a structured logger for the search and
// reconstruction packages. The search engines, GWDT, fast marching and
// reconstruct.Trace accept a *Logger (pruning does not); a nil *Logger, a
// zero Logger and the Logger from Discard are all safe and silent, so
// library callers never have to wire logging just to call an algorithm.
package tracelog

import (
	"io"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the structured sink used across neurotrace. It is a thin
// facade over charmbracelet/log so call sites don't depend directly on
// the third-party API.
type Logger struct {
	l *charmlog.Logger
}

// New returns a Logger writing to w at the given level ("debug", "info",
// "warn", "error"). An unrecognized level falls back to "info".
func New(w io.Writer, level string) *Logger {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		lvl = charmlog.InfoLevel
	}

	return &Logger{l: charmlog.NewWithOptions(w, charmlog.Options{
		Level:           lvl,
		ReportTimestamp: true,
	})}
}

// Discard returns a Logger that drops every message.
func Discard() *Logger {
	return &Logger{l: charmlog.NewWithOptions(io.Discard, charmlog.Options{})}
}

// With returns a child Logger with the given key/value pairs attached
// to every subsequent message (e.g. component="gwdt").
func (lg *Logger) With(keyvals ...interface{}) *Logger {
	if lg == nil || lg.l == nil {
		return Discard()
	}

	return &Logger{l: lg.l.With(keyvals...)}
}

func (lg *Logger) Debug(msg string, keyvals ...interface{}) {
	if lg == nil || lg.l == nil {
		return
	}
	lg.l.Debug(msg, keyvals...)
}

func (lg *Logger) Info(msg string, keyvals ...interface{}) {
	if lg == nil || lg.l == nil {
		return
	}
	lg.l.Info(msg, keyvals...)
}

func (lg *Logger) Warn(msg string, keyvals ...interface{}) {
	if lg == nil || lg.l == nil {
		return
	}
	lg.l.Warn(msg, keyvals...)
}

func (lg *Logger) Error(msg string, keyvals ...interface{}) {
	if lg == nil || lg.l == nil {
		return
	}
	lg.l.Error(msg, keyvals...)
}
