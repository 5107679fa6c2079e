// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package bigtile

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while loader goroutines are logging.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for bigtile and all its sub-packages.
// By default, bigtile produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by bigtile:
//   - [slog.LevelDebug]: per-frame diagnostics (requests, purges, magnification steps)
//   - [slog.LevelInfo]: lifecycle events (poster loaded, event loop started)
//   - [slog.LevelWarn]: tile load failures, retries given up, texture release errors
//
// Example:
//
//	bigtile.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by bigtile.
// Sub-packages (tile/, loader/, pano/, lod/) call this to share the same
// configuration without introducing import cycles.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
