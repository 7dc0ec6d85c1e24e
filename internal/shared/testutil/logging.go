// Package testutil provides helpers shared across package tests.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Record is one captured log line. Attrs flattens handler and record
// attributes into one map, group names joined into the key with dots.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder collects every record written through loggers created by
// NewLogger, so tests can assert on what a component logged.
type LogRecorder struct {
	mu      sync.Mutex
	t       *testing.T
	records []Record
}

// NewLogger returns a logger that records into the returned recorder. All
// levels are enabled; records echo through t.Logf so they surface when a
// test fails.
func NewLogger(t *testing.T) (*slog.Logger, *LogRecorder) {
	t.Helper()
	rec := &LogRecorder{t: t}
	return slog.New(&recordingHandler{rec: rec}), rec
}

// Records returns a copy of everything captured so far.
func (r *LogRecorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Has reports whether a record at the given level contains substr in its
// message.
func (r *LogRecorder) Has(level slog.Level, substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Level == level && strings.Contains(rec.Message, substr) {
			return true
		}
	}
	return false
}

func (r *LogRecorder) add(rec Record) {
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
	if r.t != nil {
		r.t.Logf("[%s] %s %v", rec.Level, rec.Message, rec.Attrs)
	}
}

// recordingHandler feeds a recorder. With-derived handlers keep their
// accumulated attrs and group prefix but append to the same recorder.
type recordingHandler struct {
	rec    *LogRecorder
	attrs  []slog.Attr
	prefix string
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	// Handler attrs already carry their prefix from WithAttrs.
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.prefix+a.Key] = a.Value.Any()
		return true
	})
	h.rec.add(Record{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		merged = append(merged, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &recordingHandler{rec: h.rec, attrs: merged, prefix: h.prefix}
}

func (h *recordingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &recordingHandler{rec: h.rec, attrs: h.attrs, prefix: h.prefix + name + "."}
}
