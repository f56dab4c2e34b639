package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewJSONWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("document ingested", "doc_id", "abc", "chunks", 3)
	logger.Debug("should be filtered")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("log lines = %d, want 1", len(lines))
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["msg"] != "document ingested" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["doc_id"] != "abc" {
		t.Errorf("doc_id = %v", entry["doc_id"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Error("missing ts field")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestConsoleHandlerOutput(t *testing.T) {
	var buf strings.Builder
	level := new(slog.LevelVar)
	handler := &consoleHandler{mu: &sync.Mutex{}, w: &buf, level: level}
	logger := slog.New(handler)

	logger.With("component", "pipeline").Info("video ingested", "doc_id", "v1", "file name", "a b.mp4")

	line := buf.String()
	if !strings.Contains(line, "INFO") {
		t.Errorf("missing level: %q", line)
	}
	if !strings.Contains(line, "video ingested") {
		t.Errorf("missing message: %q", line)
	}
	if !strings.Contains(line, "component=pipeline") {
		t.Errorf("missing preset attr: %q", line)
	}
	if !strings.Contains(line, `file name="a b.mp4"`) {
		t.Errorf("value with spaces not quoted: %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Errorf("color codes written to non-terminal: %q", line)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("nothing happens")
}

func TestWithContextAddsRequestID(t *testing.T) {
	var buf strings.Builder
	level := new(slog.LevelVar)
	logger := slog.New(&consoleHandler{mu: &sync.Mutex{}, w: &buf, level: level})

	ctx := WithRequestID(context.Background(), "req-9")
	WithContext(ctx, logger).Info("handled")

	if !strings.Contains(buf.String(), "request_id=req-9") {
		t.Errorf("missing request id: %q", buf.String())
	}

	if id, ok := RequestIDFromContext(ctx); !ok || id != "req-9" {
		t.Errorf("RequestIDFromContext = %q, %v", id, ok)
	}
	if _, ok := RequestIDFromContext(context.Background()); ok {
		t.Error("unexpected request id in empty context")
	}
}
