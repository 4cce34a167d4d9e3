package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewAttachesServiceAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger := New("api", Options{Level: "info", Output: &buf})

	logger.Info("catalog probe", "guides", 4)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if line["service"] != "api" {
		t.Fatalf("expected service attribute, got %v", line["service"])
	}
	if line["msg"] != "catalog probe" {
		t.Fatalf("unexpected message %v", line["msg"])
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("worker", Options{Level: "warn", Output: &buf})

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("info line must be suppressed at warn level: %s", buf.String())
	}

	logger.Warn("emitted")
	if buf.Len() == 0 {
		t.Fatalf("warn line must be emitted at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		"  WARN ":  slog.LevelWarn,
		"warning":  slog.LevelWarn,
		"error":    slog.LevelError,
		"info":     slog.LevelInfo,
		"":         slog.LevelInfo,
		"verbose!": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
