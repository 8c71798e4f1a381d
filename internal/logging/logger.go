// Package logging provides structured logging to a dated log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration
type Config struct {
	Dir   string // directory for log files
	Level string // debug, info, warn, error
	// Console additionally writes human-readable lines to this writer.
	// The TUI leaves it nil because it owns the terminal.
	Console io.Writer
}

// Logger wraps zerolog with a file sink
type Logger struct {
	zlog    zerolog.Logger
	mu      sync.Mutex
	file    *os.File
	logPath string
}

// FileName returns the log file name for the given day.
func FileName(day time.Time) string {
	return fmt.Sprintf("marionette_%s.log", day.Format("2006-01-02"))
}

// New creates a Logger writing to <Dir>/marionette_<date>.log
func New(cfg Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	logPath := filepath.Join(cfg.Dir, FileName(time.Now()))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	var out io.Writer = file
	if cfg.Console != nil {
		out = io.MultiWriter(file, zerolog.ConsoleWriter{Out: cfg.Console, TimeFormat: "15:04:05"})
	}

	zlog := zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("app", "marionette").
		Logger()

	l := &Logger{zlog: zlog, file: file, logPath: logPath}
	l.zlog.Info().Str("component", "logging").Str("file", logPath).Str("level", cfg.Level).Msg("logger initialized")
	return l, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// ParseLevel maps a configured level name to zerolog. Unknown names mean info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Component returns a zerolog.Logger with the component field set
func (l *Logger) Component(name string) zerolog.Logger {
	return l.zlog.With().Str("component", name).Logger()
}

// Zerolog returns the underlying zerolog.Logger
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zlog
}

// Path returns the current log file path, empty for Nop.
func (l *Logger) Path() string {
	return l.logPath
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	l.zlog.Info().Str("component", "logging").Msg("logger shutting down")
	err := l.file.Close()
	l.file = nil
	return err
}
