package internal

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// levelTrace sits below slog.LevelDebug.
const levelTrace = slog.Level(-8)

// ParseLogLevel maps ERROR, WARN, INFO, DEBUG and TRACE (any case) to a level.
// Unknown names fall back to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN", "WARNING":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "ERROR"
	case LogLevelWarn:
		return "WARN"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelTrace:
		return "TRACE"
	default:
		return "INFO"
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelError:
		return slog.LevelError
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelTrace:
		return levelTrace
	default:
		return slog.LevelInfo
	}
}

// Logger provides leveled, structured logging. Arguments after the message are
// slog key/value pairs.
type Logger struct {
	level LogLevel
	sl    *slog.Logger
}

// NewLogger creates a logger writing colourised output to stderr.
func NewLogger(level LogLevel) *Logger {
	return NewLoggerTo(os.Stderr, level, false)
}

// NewLoggerTo creates a logger writing to w. noColor disables ANSI escapes,
// which tests and redirected output want.
func NewLoggerTo(w io.Writer, level LogLevel, noColor bool) *Logger {
	h := tint.NewHandler(w, &tint.Options{
		Level:      level.slogLevel(),
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == levelTrace {
					a.Value = slog.StringValue("TRC")
				}
			}
			return a
		},
	})
	return &Logger{level: level, sl: slog.New(h)}
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")))
}

// With returns a logger that adds the key/value pairs to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{level: l.level, sl: l.sl.With(args...)}
}

// Error logs error messages
func (l *Logger) Error(msg string, args ...any) {
	l.sl.Error(msg, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, args ...any) {
	l.sl.Warn(msg, args...)
}

// Info logs info messages
func (l *Logger) Info(msg string, args ...any) {
	l.sl.Info(msg, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(msg string, args ...any) {
	l.sl.Debug(msg, args...)
}

// Trace logs trace messages
func (l *Logger) Trace(msg string, args ...any) {
	l.sl.Log(context.Background(), levelTrace, msg, args...)
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// Slog exposes the underlying slog logger for libraries that take one.
func (l *Logger) Slog() *slog.Logger {
	return l.sl
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()
