// Package logging wraps logrus in the shape the teacher's
// pkg/framework/debug.Logger exposes — level, prefix, printf-style
// Debug/Info/Warn/Error/Fatal calls, and a process-wide default — so
// the rest of the core never imports logrus directly (SPEC_FULL.md's
// ambient stack: structured logging per the teacher's own convention,
// backed by github.com/sirupsen/logrus instead of hand-rolled
// formatting).
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Level mirrors the teacher's LogLevel enum, mapped onto logrus's.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) toLogrus() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelInfo:
		return logrus.InfoLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	case LevelFatal:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger is a prefixed, leveled logger. The zero value is not usable;
// build one with New or use Default.
type Logger struct {
	entry *logrus.Entry
}

// New builds a Logger writing to w with the given component prefix,
// at LevelInfo by default.
func New(w io.Writer, component string) *Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	base.SetLevel(logrus.InfoLevel)
	return &Logger{entry: base.WithField("component", component)}
}

// SetLevel sets the minimum level this logger emits.
func (l *Logger) SetLevel(level Level) {
	l.entry.Logger.SetLevel(level.toLogrus())
}

// With returns a child logger with an additional field, for call sites
// that want per-voice or per-track context (e.g. track name) attached
// to every subsequent line.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }

var defaultLogger = New(os.Stderr, "corelx")

// Default returns the process-wide logger used where a component has
// not been handed one explicitly (e.g. param.NewControls given a nil
// logger).
func Default() *Logger { return defaultLogger }
