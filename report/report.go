// SPDX-License-Identifier: EPL-2.0

// Package report defines the sinks the pipeline emits structured events
// to: a three-level message handler and a per-stage progress contract.
// Implementations may render to a terminal or persist the events; the
// default handler wraps log/slog.
package report

import "log/slog"

// Handler receives pipeline events at three levels. Components hold a
// Handler by reference; there is no package-level default.
type Handler interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Progress receives per-stage ticks: one per input file during
// extraction, one per output track during building and splitting.
type Progress interface {
	Step(stage string, done, total int)
}

type slogHandler struct {
	l *slog.Logger
}

// NewSlogHandler returns a Handler backed by l, or slog.Default when l
// is nil.
func NewSlogHandler(l *slog.Logger) Handler {
	if l == nil {
		l = slog.Default()
	}
	return &slogHandler{l: l}
}

func (h *slogHandler) Info(msg string, args ...any)  { h.l.Info(msg, args...) }
func (h *slogHandler) Warn(msg string, args ...any)  { h.l.Warn(msg, args...) }
func (h *slogHandler) Error(msg string, args ...any) { h.l.Error(msg, args...) }

type nopHandler struct{}

func (nopHandler) Info(string, ...any)  {}
func (nopHandler) Warn(string, ...any)  {}
func (nopHandler) Error(string, ...any) {}

// Nop returns a Handler that discards everything.
func Nop() Handler { return nopHandler{} }

type nopProgress struct{}

func (nopProgress) Step(string, int, int) {}

// NopProgress returns a Progress sink that discards ticks.
func NopProgress() Progress { return nopProgress{} }
