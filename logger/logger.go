// Package logger defines the logging interface used across the module.
package logger

import (
	"fmt"
	"strconv"
	"strings"
)

type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var levelNames = [...]string{
	LevelError: "error",
	LevelWarn:  "warn",
	LevelInfo:  "info",
	LevelDebug: "debug",
	LevelTrace: "trace",
}

func (l Level) MarshalText() (text []byte, err error) {
	if l < LevelError || l > LevelTrace {
		return nil, fmt.Errorf("unexpected logger.Level: %d", l)
	}
	return []byte(levelNames[l]), nil
}

func (l Level) String() string {
	text, err := l.MarshalText()
	if err != nil {
		return strconv.FormatInt(int64(l), 10)
	}
	return string(text)
}

func (l *Level) UnmarshalText(text []byte) error {
	for lv, name := range levelNames {
		if strings.EqualFold(string(text), name) {
			*l = Level(lv)
			return nil
		}
	}
	return fmt.Errorf("unknown log level: %s", string(text))
}

type Logger interface {
	With(field string, value any) Logger
	WithFields(fields map[string]any) Logger
	Logf(level Level, format string, args ...any)
	Log(level Level, args ...any)
	Errorf(format string, args ...any)
	Error(args ...any)
	Warnf(format string, args ...any)
	Warn(args ...any)
	Infof(format string, args ...any)
	Info(args ...any)
	Debugf(format string, args ...any)
	Debug(args ...any)
	Tracef(format string, args ...any)
	Trace(args ...any)
}

type nopLogger struct{}

// Nop returns a Logger that discards everything
func Nop() Logger { return nopLogger{} }

func (n nopLogger) With(string, any) Logger          { return n }
func (n nopLogger) WithFields(map[string]any) Logger { return n }
func (nopLogger) Logf(Level, string, ...any)         {}
func (nopLogger) Log(Level, ...any)                  {}
func (nopLogger) Errorf(string, ...any)              {}
func (nopLogger) Error(...any)                       {}
func (nopLogger) Warnf(string, ...any)               {}
func (nopLogger) Warn(...any)                        {}
func (nopLogger) Infof(string, ...any)               {}
func (nopLogger) Info(...any)                        {}
func (nopLogger) Debugf(string, ...any)              {}
func (nopLogger) Debug(...any)                       {}
func (nopLogger) Tracef(string, ...any)              {}
func (nopLogger) Trace(...any)                       {}

var _ Logger = nopLogger{}
