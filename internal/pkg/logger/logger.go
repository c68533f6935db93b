package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

func (l Level) String() string {
	return levelNames[l]
}

// ParseLevel maps a LOG_LEVEL value to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR, FATAL:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type Logger struct {
	level  Level
	floor  *slog.LevelVar
	handle *slog.Logger
}

// New returns a text logger on stdout.
func New(level Level) *Logger {
	return NewWithWriter(os.Stdout, level, false)
}

// NewWithWriter builds a logger writing to w, as JSON when json is set.
func NewWithWriter(w io.Writer, level Level, json bool) *Logger {
	floor := new(slog.LevelVar)
	floor.Set(level.slogLevel())
	opts := &slog.HandlerOptions{Level: floor}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &Logger{level: level, floor: floor, handle: slog.New(h)}
}

func (l *Logger) log(level Level, format string, v ...interface{}) {
	if l.level > level {
		return
	}
	msg := fmt.Sprintf(format, v...)
	l.handle.Log(context.Background(), level.slogLevel(), msg)
}

func (l *Logger) Debug(format string, v ...interface{}) { l.log(DEBUG, format, v...) }
func (l *Logger) Info(format string, v ...interface{})  { l.log(INFO, format, v...) }
func (l *Logger) Warn(format string, v ...interface{})  { l.log(WARN, format, v...) }
func (l *Logger) Error(format string, v ...interface{}) { l.log(ERROR, format, v...) }

func (l *Logger) Fatal(format string, v ...interface{}) {
	l.handle.Error(fmt.Sprintf(format, v...), "level", FATAL.String())
	os.Exit(1)
}

// With returns a logger that attaches the given key/value pairs to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{level: l.level, floor: l.floor, handle: l.handle.With(args...)}
}

// SetLevel changes the logging level
func (l *Logger) SetLevel(level Level) {
	l.level = level
	l.floor.Set(level.slogLevel())
}

// GetLevel returns current logging level
func (l *Logger) GetLevel() Level {
	return l.level
}

// Global logger instance
var defaultLogger = New(INFO)

// Package-level functions for easy access
func Debug(format string, v ...interface{}) { defaultLogger.Debug(format, v...) }
func Info(format string, v ...interface{})  { defaultLogger.Info(format, v...) }
func Warn(format string, v ...interface{})  { defaultLogger.Warn(format, v...) }
func Error(format string, v ...interface{}) { defaultLogger.Error(format, v...) }
func Fatal(format string, v ...interface{}) { defaultLogger.Fatal(format, v...) }

// SetDefault replaces the global logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// Default returns the global logger.
func Default() *Logger {
	return defaultLogger
}
