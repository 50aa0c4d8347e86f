package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"param-server/src/models"
)

// -----------------------------------------------------------------------------

// Logger provides named, leveled logging for one component.
type Logger struct {
	name   string
	logger *slog.Logger
}

// -----------------------------------------------------------------------------

// NewLogger creates a Logger writing to stdout. The level is read from cfg when
// it is a *models.MConfig, INFO otherwise.
func NewLogger(config interface{}, name string) *Logger {
	return NewLoggerTo(os.Stdout, config, name)
}

// -----------------------------------------------------------------------------

// NewLoggerTo is NewLogger with an explicit writer.
func NewLoggerTo(w io.Writer, config interface{}, name string) *Logger {
	level := slog.LevelInfo
	if cfg, ok := config.(*models.MConfig); ok && cfg != nil {
		level = ParseLevel(cfg.LogLevel)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{
		name:   name,
		logger: slog.New(handler).With("component", name),
	}
}

// -----------------------------------------------------------------------------

// ParseLevel maps config level names onto slog levels.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// -----------------------------------------------------------------------------

// Name returns the component name.
func (l *Logger) Name() string {
	return l.name
}

// -----------------------------------------------------------------------------

// With returns a child logger carrying extra attributes (e.g. a connection id).
func (l *Logger) With(args ...any) *Logger {
	return &Logger{name: l.name, logger: l.logger.With(args...)}
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "severity", "CRITICAL")
	os.Exit(1)
}
