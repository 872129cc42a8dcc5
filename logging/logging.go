// Package logging is the project logging facade. It wraps zap with a small
// interface so packages can log structured key/value pairs without caring
// about the backing sinks, and so tests can observe emitted entries.
package logging

import (
	"os"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// Level is the verbosity threshold for a Logger.
type Level int8

// Levels, lowest to highest severity.
const (
	DEBUG Level = iota - 1
	INFO
	WARN
	ERROR
)

// AsZap converts the level to its zap equivalent.
func (l Level) AsZap() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "Debug"
	case WARN:
		return "Warn"
	case ERROR:
		return "Error"
	}
	return "Info"
}

// LevelFromString parses a level name as accepted on command lines.
func LevelFromString(s string) (Level, bool) {
	switch s {
	case "debug", "Debug", "DEBUG":
		return DEBUG, true
	case "info", "Info", "INFO", "":
		return INFO, true
	case "warn", "Warn", "WARN", "warning":
		return WARN, true
	case "error", "Error", "ERROR":
		return ERROR, true
	}
	return INFO, false
}

// Logger is the interface the rest of the repo logs against.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})

	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})

	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})

	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	Fatal(args ...interface{})
	Fatalf(template string, args ...interface{})

	// Sublogger returns a child named <parent>.<name> sharing the parent's
	// level.
	Sublogger(name string) Logger
	SetLevel(level Level)
	GetLevel() Level

	// AsZap exposes the underlying sugared logger for libraries that take
	// zap directly.
	AsZap() *zap.SugaredLogger
}

type impl struct {
	name  string
	level zap.AtomicLevel
	*zap.SugaredLogger
}

// NewZapLoggerConfig returns the encoder configuration used for console
// output.
func NewZapLoggerConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

func newWithLevel(name string, level Level) Logger {
	atom := zap.NewAtomicLevelAt(level.AsZap())
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(NewZapLoggerConfig()),
		zapcore.Lock(os.Stdout),
		atom,
	)
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Named(name)
	return &impl{name: name, level: atom, SugaredLogger: logger.Sugar()}
}

// NewLogger returns a console logger at INFO.
func NewLogger(name string) Logger {
	return newWithLevel(name, INFO)
}

// NewDebugLogger returns a console logger at DEBUG.
func NewDebugLogger(name string) Logger {
	return newWithLevel(name, DEBUG)
}

// NewTestLogger routes output through the test runner so entries interleave
// with failures and stay hidden for passing tests.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is NewTestLogger plus an observer for asserting on
// emitted entries.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	atom := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	testCore := zaptest.NewLogger(tb, zaptest.Level(zapcore.DebugLevel)).Core()
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	logger := zap.New(zapcore.NewTee(testCore, observerCore), zap.IncreaseLevel(atom))
	return &impl{name: tb.Name(), level: atom, SugaredLogger: logger.Sugar()}, observedLogs
}

func (l *impl) Sublogger(name string) Logger {
	return &impl{
		name:          l.name + "." + name,
		level:         l.level,
		SugaredLogger: l.SugaredLogger.Named(name),
	}
}

func (l *impl) SetLevel(level Level) {
	l.level.SetLevel(level.AsZap())
}

func (l *impl) GetLevel() Level {
	switch l.level.Level() {
	case zapcore.DebugLevel:
		return DEBUG
	case zapcore.WarnLevel:
		return WARN
	case zapcore.ErrorLevel:
		return ERROR
	}
	return INFO
}

func (l *impl) AsZap() *zap.SugaredLogger {
	return l.SugaredLogger
}
