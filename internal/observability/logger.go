// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability provides the structured logger and run metrics.
package observability

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

// NewLogger creates a zerolog logger writing to out. Console and pretty
// formats use zerolog's human-readable writer; anything else emits JSON.
func NewLogger(cfg types.LoggingConfig, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// parseLevel converts a string log level to zerolog.Level.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewRunID returns a fresh identifier for one digest run.
func NewRunID() string {
	return uuid.NewString()
}

// WithRunContext tags every entry with the run id and catalog source.
func WithRunContext(logger zerolog.Logger, runID, server string) zerolog.Logger {
	return logger.With().
		Str("run_id", runID).
		Str("server", server).
		Logger()
}
