package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// LogHandler is a slog.Handler implementation that captures log records for testing.
type LogHandler struct {
	records     []slog.Record
	mu          sync.Mutex
	logToStdout bool
}

// NewLogHandler creates a new LogHandler.
// Switchable to log to stdout, which can be useful for debugging tests by seeing the actual log output.
func NewLogHandler(logToStdout bool) *LogHandler {
	return &LogHandler{
		records:     make([]slog.Record, 0),
		logToStdout: logToStdout,
	}
}

// NewLogger returns a logger writing into a fresh LogHandler, and the handler.
func NewLogger() (*slog.Logger, *LogHandler) {
	handler := NewLogHandler(false)

	return slog.New(handler), handler
}

// Handle implements slog.Handler interface.
func (h *LogHandler) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)

	if h.logToStdout {
		textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
		_ = textHandler.Handle(ctx, record)
	}

	return nil
}

// Enabled implements slog.Handler interface.
func (h *LogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler interface.
func (h *LogHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup implements slog.Handler interface.
func (h *LogHandler) WithGroup(_ string) slog.Handler {
	return h
}

// RecordCount returns the number of captured log records.
func (h *LogHandler) RecordCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.records)
}

// Records returns a copy of all captured log records.
func (h *LogHandler) Records() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	records := make([]slog.Record, len(h.records))
	copy(records, h.records)

	return records
}

// Reset clears all captured log records.
func (h *LogHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = h.records[:0]
}

// LogRecordMatcher provides a fluent interface for checking log record attributes.
type LogRecordMatcher struct {
	candidates []slog.Record
}

// HasDebugLogWithMessage starts a fluent chain to check debug-level log records.
func (h *LogHandler) HasDebugLogWithMessage(message string) *LogRecordMatcher {
	return h.match(slog.LevelDebug, message)
}

// HasInfoLogWithMessage starts a fluent chain to check info-level log records.
func (h *LogHandler) HasInfoLogWithMessage(message string) *LogRecordMatcher {
	return h.match(slog.LevelInfo, message)
}

// HasWarnLogWithMessage starts a fluent chain to check warn-level log records.
func (h *LogHandler) HasWarnLogWithMessage(message string) *LogRecordMatcher {
	return h.match(slog.LevelWarn, message)
}

// HasErrorLogWithMessage starts a fluent chain to check error-level log records.
func (h *LogHandler) HasErrorLogWithMessage(message string) *LogRecordMatcher {
	return h.match(slog.LevelError, message)
}

func (h *LogHandler) match(level slog.Level, message string) *LogRecordMatcher {
	h.mu.Lock()
	defer h.mu.Unlock()

	m := &LogRecordMatcher{}
	for _, record := range h.records {
		if record.Level == level && record.Message == message {
			m.candidates = append(m.candidates, record)
		}
	}

	return m
}

// WithAttr keeps only the records carrying key with a value that renders like value.
func (m *LogRecordMatcher) WithAttr(key string, value any) *LogRecordMatcher {
	want := fmt.Sprint(value)
	kept := m.candidates[:0:0]

	for _, record := range m.candidates {
		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == key && attr.Value.String() == want {
				kept = append(kept, record)
				return false // Stop iteration
			}

			return true // Continue iteration
		})
	}

	m.candidates = kept

	return m
}

// Assert returns true if all conditions in the fluent chain were met.
func (m *LogRecordMatcher) Assert() bool {
	return len(m.candidates) > 0
}
