package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON entry %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "call succeeded", Field{Key: "breaker", Value: "db"})

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry["level"] != "info" {
		t.Errorf("expected level info, got %v", entry["level"])
	}
	if entry["msg"] != "call succeeded" {
		t.Errorf("expected msg 'call succeeded', got %v", entry["msg"])
	}
	if entry["breaker"] != "db" {
		t.Errorf("expected breaker field 'db', got %v", entry["breaker"])
	}
	if entry["timestamp"] == nil {
		t.Error("expected timestamp field")
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	entries := decodeEntries(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries at warn level, got %d", len(entries))
	}
	if entries[0]["msg"] != "warn message" {
		t.Errorf("expected first entry 'warn message', got %v", entries[0]["msg"])
	}
	if entries[1]["msg"] != "error message" {
		t.Errorf("expected second entry 'error message', got %v", entries[1]["msg"])
	}
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	derived := logger.With(Field{Key: "service", Value: "orders"})
	derived.Info(context.Background(), "ready", Field{Key: "port", Value: 8080})

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["service"] != "orders" {
		t.Errorf("expected inherited service field, got %v", entries[0]["service"])
	}
	if entries[0]["port"] != float64(8080) {
		t.Errorf("expected port 8080, got %v", entries[0]["port"])
	}

	// Parent logger must not carry the derived fields.
	buf.Reset()
	logger.Info(context.Background(), "plain")
	entries = decodeEntries(t, &buf)
	if _, ok := entries[0]["service"]; ok {
		t.Error("parent logger should not carry derived fields")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()

	// Must not panic, including through With.
	logger.With(Field{Key: "k", Value: "v"}).Info(context.Background(), "discarded")
	logger.Error(context.Background(), "discarded too")
}
