package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}

	logger.Info("hello", "component", "test")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "hello" || record["component"] != "test" {
		t.Errorf("Unexpected record: %v", record)
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Config{Level: "warn", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("Expected info record to be filtered at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("Expected warn record to pass")
	}
}

func TestSetup_SetsDefault(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Config{Writer: &buf})
	if err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}
	if slog.Default() != logger {
		t.Error("Expected Setup to install the process default logger")
	}
}

func TestSetup_InvalidConfig(t *testing.T) {
	if _, err := Setup(Config{Level: "loud"}); err == nil {
		t.Error("Expected error for unknown level")
	}
	if _, err := Setup(Config{Format: "xml"}); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
