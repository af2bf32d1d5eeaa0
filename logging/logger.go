// Package logging provides structured logging for the application.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
)

// Logger is the structured logging interface.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...any)
	// Info logs an informational message.
	Info(msg string, args ...any)
	// Warn logs a warning message.
	Warn(msg string, args ...any)
	// Error logs an error message.
	Error(msg string, args ...any)
	// With returns a new logger with additional key-value pairs.
	With(args ...any) Logger
	// Shutdown flushes buffered logs and releases resources.
	Shutdown() error
}

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level to record.
	Level string
	// Dir is the directory for log files. Empty disables file logging.
	Dir string
	// MaxFiles is the maximum number of log files to retain.
	MaxFiles int
	// Stderr mirrors log output to standard error.
	Stderr bool
}

// DefaultConfig returns a Config with default values. The level can be
// raised to debug with EXCELMANAGER_LOG_LEVEL.
func DefaultConfig() Config {
	level := os.Getenv("EXCELMANAGER_LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	return Config{
		Level:    level,
		MaxFiles: 10,
		Stderr:   true,
	}
}

// loggerImpl is the charmbracelet/log based implementation.
type loggerImpl struct {
	clogger *clog.Logger
	file    *os.File
	path    string
}

// Init creates a Logger per cfg. File logging failures are not fatal:
// the logger falls back to stderr only and reports the problem through
// the returned error while still handing back a usable logger.
func Init(cfg Config) (Logger, error) {
	var writers []io.Writer
	var file *os.File
	var path string
	var fileErr error

	if cfg.Dir != "" {
		file, path, fileErr = openLogFile(cfg.Dir, cfg.MaxFiles)
		if file != nil {
			writers = append(writers, file)
		}
	}
	if cfg.Stderr || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	clogger := clog.NewWithOptions(io.MultiWriter(writers...), clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           parseLevel(cfg.Level),
		Prefix:          "excelmanager",
	})

	return &loggerImpl{clogger: clogger, file: file, path: path}, fileErr
}

// openLogFile rotates old logs and opens a fresh timestamped log file.
func openLogFile(dir string, maxFiles int) (*os.File, string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, "", fmt.Errorf("create log directory: %w", err)
	}
	if err := rotate(dir, maxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
	}
	name := fmt.Sprintf("excelmanager_%s_PID%d.log",
		time.Now().Format("20060102_150405"), os.Getpid())
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, "", fmt.Errorf("open log file: %w", err)
	}
	return f, path, nil
}

// parseLevel converts a string level to clog.Level.
func parseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "info":
		return clog.InfoLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

func (l *loggerImpl) Debug(msg string, args ...any) { l.clogger.Debug(msg, args...) }
func (l *loggerImpl) Info(msg string, args ...any)  { l.clogger.Info(msg, args...) }
func (l *loggerImpl) Warn(msg string, args ...any)  { l.clogger.Warn(msg, args...) }
func (l *loggerImpl) Error(msg string, args ...any) { l.clogger.Error(msg, args...) }

func (l *loggerImpl) With(args ...any) Logger {
	return &loggerImpl{clogger: l.clogger.With(args...), file: l.file, path: l.path}
}

func (l *loggerImpl) Shutdown() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// FilePath returns the current log file path, or empty when logging to
// stderr only.
func (l *loggerImpl) FilePath() string { return l.path }

// Nop returns a logger that discards all output. Used by tests and by
// library consumers that pass no logger.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}
func (n nopLogger) With(args ...any) Logger     { return n }
func (nopLogger) Shutdown() error               { return nil }
