// Package logging is a small leveled logging facade with zap and logrus
// backends. Library code depends on Logger only; the CLI picks a backend.
package logging

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a tiny leveled logger.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// Backend names a logging implementation.
type Backend string

const (
	BackendZap    Backend = "zap"
	BackendLogrus Backend = "logrus"
	BackendNone   Backend = "none"
)

// ZapLogger adapts a *zap.Logger.
type ZapLogger struct{ L *zap.Logger }

func (z ZapLogger) Debug(msg string, f Fields) { z.L.Debug(msg, zapFields(f)...) }
func (z ZapLogger) Info(msg string, f Fields)  { z.L.Info(msg, zapFields(f)...) }
func (z ZapLogger) Warn(msg string, f Fields)  { z.L.Warn(msg, zapFields(f)...) }
func (z ZapLogger) Error(msg string, f Fields) { z.L.Error(msg, zapFields(f)...) }

func zapFields(f Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}

// LogrusLogger adapts a *logrus.Entry.
type LogrusLogger struct{ E *logrus.Entry }

func (l LogrusLogger) Debug(msg string, f Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l LogrusLogger) Info(msg string, f Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }

// New builds a Logger writing to stderr at the given level
// ("debug", "info", "warn" or "error").
func New(backend Backend, level string) (Logger, error) {
	switch Backend(strings.ToLower(string(backend))) {
	case BackendZap, "":
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.DisableStacktrace = true
		l, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build zap logger: %w", err)
		}
		return ZapLogger{L: l}, nil
	case BackendLogrus:
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		l := logrus.New()
		l.SetLevel(lvl)
		return LogrusLogger{E: logrus.NewEntry(l)}, nil
	case BackendNone:
		return NopLogger{}, nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
