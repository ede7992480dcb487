package ditherfx

import (
	"context"
	"log/slog"
)

// nopHandler is a slog.Handler that discards all log records. Enabled
// returns false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output. It is
// the default for every type in this package; pass WithLogger or
// WithExtractorLogger to see diagnostics.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }
