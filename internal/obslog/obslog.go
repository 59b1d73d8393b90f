// Package obslog wraps zap for the structured logging the core's build and
// query paths need: resolution-fallback warnings that never affect a
// query's return value, and build/load timing. A Logger is threaded
// through constructors explicitly rather than called through a package
// global.
package obslog

import (
	"time"

	"go.uber.org/zap"
)

// Logger is a thin, embeddable wrapper over zap's sugared logger.
type Logger struct {
	s *zap.SugaredLogger
}

// New builds a production-configured Logger. Callers that need a
// development logger (colorized, caller-annotated) should use NewDevelopment.
func New() *Logger {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	return &Logger{s: l.Sugar()}
}

// NewDevelopment builds a Logger tuned for local CLI use.
func NewDevelopment() *Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	return &Logger{s: l.Sugar()}
}

// Nop returns a Logger that discards everything, for tests that don't want
// log output or a dependency on zap's global state.
func Nop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

// Warn logs a warning that does not affect the caller's return value, e.g.
// a resolution request falling back to the coarsest ladder level.
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	if l == nil || l.s == nil {
		return
	}
	l.s.Warnw(msg, keysAndValues...)
}

// Debug logs a diagnostic message, such as which resolution a query selected.
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	if l == nil || l.s == nil {
		return
	}
	l.s.Debugw(msg, keysAndValues...)
}

// Time logs the duration of op when the returned func is called, for
// build/load instrumentation.
func (l *Logger) Time(op string) func() {
	start := time.Now()
	return func() {
		if l == nil || l.s == nil {
			return
		}
		l.s.Infow("timing", "op", op, "duration", time.Since(start))
	}
}

// Sync flushes buffered log entries; callers should defer it from main.
func (l *Logger) Sync() {
	if l == nil || l.s == nil {
		return
	}
	_ = l.s.Sync()
}
