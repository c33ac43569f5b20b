package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the interface for logging throughout the application.
// Different implementations can be used for different contexts (console, silent, file, etc.)
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// ConsoleLogger writes human-readable logs to stdout/stderr.
// Used by one-shot CLI commands.
type ConsoleLogger struct {
	debug bool
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{}
}

// NewVerboseConsoleLogger returns a ConsoleLogger that also prints debug lines.
func NewVerboseConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{debug: true}
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	fmt.Printf("[INFO] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	if !c.debug {
		return
	}
	fmt.Printf("[DEBUG] "+msg+"\n", args...)
}

// SilentLogger discards all log messages.
// Used when running in TUI mode without a log file.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}

// FileLogger writes structured JSON lines through zap. The TUI owns the
// terminal, so interactive sessions log here instead of to the console.
type FileLogger struct {
	sugar *zap.SugaredLogger
}

// NewFileLogger opens (or creates) path and logs every level to it.
func NewFileLogger(path string) (*FileLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return NewZapLogger(l), nil
}

// NewZapLogger adapts an existing zap logger.
func NewZapLogger(l *zap.Logger) *FileLogger {
	return &FileLogger{sugar: l.Sugar()}
}

func (f *FileLogger) Info(msg string, args ...interface{}) {
	f.sugar.Infof(msg, args...)
}

func (f *FileLogger) Error(msg string, args ...interface{}) {
	f.sugar.Errorf(msg, args...)
}

func (f *FileLogger) Debug(msg string, args ...interface{}) {
	f.sugar.Debugf(msg, args...)
}

// Close flushes buffered entries.
func (f *FileLogger) Close() error {
	return f.sugar.Sync()
}

// New picks the logger for a session: a FileLogger when path is set,
// otherwise the given fallback.
func New(path string, fallback Logger) (Logger, error) {
	if path == "" {
		return fallback, nil
	}
	return NewFileLogger(path)
}
