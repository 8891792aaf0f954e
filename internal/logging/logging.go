// Package logging owns the application logger. The terminal belongs to the
// reading view, so log output always goes to a file under the state
// directory, never to stdout or stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

var (
	logger  *log.Logger
	logFile *os.File
)

// Init opens the log file and configures the package logger. Programs that
// never call Init get no-op logging, which keeps tests quiet.
func Init(debug bool) error {
	dir, err := stateDir()
	if err != nil {
		return fmt.Errorf("logging: resolve state dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("logging: create state dir: %w", err)
	}

	path := filepath.Join(dir, "focus-reader.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logging: open log file: %w", err)
	}

	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	logger = log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
	logFile = f
	return nil
}

// Close flushes and releases the log file.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logger = nil
}

// Path returns the log file location, whether or not Init has run.
func Path() string {
	dir, err := stateDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "focus-reader.log")
}

func stateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "focus-reader"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "focus-reader"), nil
}

// Debug logs at debug level when logging is initialized.
func Debug(msg string, keyvals ...interface{}) {
	if logger != nil {
		logger.Debug(msg, keyvals...)
	}
}

// Info logs at info level when logging is initialized.
func Info(msg string, keyvals ...interface{}) {
	if logger != nil {
		logger.Info(msg, keyvals...)
	}
}

// Warn logs at warn level when logging is initialized.
func Warn(msg string, keyvals ...interface{}) {
	if logger != nil {
		logger.Warn(msg, keyvals...)
	}
}

// Error logs at error level when logging is initialized.
func Error(msg string, keyvals ...interface{}) {
	if logger != nil {
		logger.Error(msg, keyvals...)
	}
}
