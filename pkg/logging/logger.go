// Copyright 2025 Certen Protocol
//
// Structured logging wrapper around log/slog.

package logging

import (
	"context"
	"log/slog"
	"os"
)

// Config controls how a Logger renders output.
type Config struct {
	Level     slog.Level
	Format    string // "json" or "text"
	AddSource bool
}

func DefaultConfig() *Config {
	return &Config{
		Level:     slog.LevelInfo,
		Format:    "json",
		AddSource: false,
	}
}

// Logger wraps a *slog.Logger with a few domain-specific helpers used
// throughout the ratchet, batch, and client packages.
type Logger struct {
	base *slog.Logger
	cfg  *Config
}

// NewLogger builds a Logger writing to stderr per cfg.
func NewLogger(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return &Logger{base: slog.New(handler), cfg: cfg}
}

// WithComponent tags all records from the returned Logger with a
// "component" field, e.g. "ratchet", "batch", "sync".
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{base: l.base.With("component", name), cfg: l.cfg}
}

// WithFields attaches arbitrary structured fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{base: l.base.With(args...), cfg: l.cfg}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{base: l.base.With("error", err.Error()), cfg: l.cfg}
}

func (l *Logger) Debug(msg string, args ...any) { l.base.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.base.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.base.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.base.Error(msg, args...) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.base.DebugContext(ctx, msg, args...)
}
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.base.InfoContext(ctx, msg, args...)
}

var global *Logger

// SetGlobalLogger installs the process-wide default logger used by
// call sites (e.g. cmd/verifying-client) that do not carry one
// explicitly through a constructor.
func SetGlobalLogger(l *Logger) { global = l }

// GetGlobalLogger returns the process-wide logger, lazily defaulting
// to NewLogger(DefaultConfig()) if none was installed.
func GetGlobalLogger() *Logger {
	if global == nil {
		global = NewLogger(DefaultConfig())
	}
	return global
}
