// Package logging builds the zap logger shared by the CLI and the converter.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a structured zap logger.
// debug level → colorized console; otherwise → compact JSON.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if lvl == zapcore.DebugLevel {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// Logger is the key/value logger used by the converter.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})

	// With returns a logger that adds keysAndValues to every entry.
	With(keysAndValues ...interface{}) Logger
}

// Sugared adapts a zap logger to Logger.
type Sugared struct {
	s *zap.SugaredLogger
}

// NewSugared wraps logger.
func NewSugared(logger *zap.Logger) *Sugared {
	return &Sugared{s: logger.Sugar()}
}

// Nop returns a logger that discards everything.
func Nop() *Sugared {
	return NewSugared(zap.NewNop())
}

func (l *Sugared) With(keysAndValues ...interface{}) Logger {
	return &Sugared{s: l.s.With(keysAndValues...)}
}

func (l *Sugared) Debug(msg string, keysAndValues ...interface{}) { l.s.Debugw(msg, keysAndValues...) }
func (l *Sugared) Info(msg string, keysAndValues ...interface{})  { l.s.Infow(msg, keysAndValues...) }
func (l *Sugared) Warn(msg string, keysAndValues ...interface{})  { l.s.Warnw(msg, keysAndValues...) }
func (l *Sugared) Error(msg string, keysAndValues ...interface{}) { l.s.Errorw(msg, keysAndValues...) }
