package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"thermogauge/internal/config"
)

func TestNewLogger_devUsesTint(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Config{AppEnv: "dev", LogLevel: slog.LevelInfo}, "dev", "thermogauge")

	logger.Info("converted", "celsius", 45)

	out := buf.String()
	if !strings.Contains(out, "converted") {
		t.Fatalf("output = %q; want message", out)
	}
	if !strings.Contains(out, "thermogauge") {
		t.Errorf("output = %q; want app attribute", out)
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Errorf("dev output should be text, got JSON %q", out)
	}
}

func TestNewLogger_releaseUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}, "1.2.3", "thermogauge")

	logger.Info("converted")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["app"] != "thermogauge" || rec["version"] != "1.2.3" || rec["env"] != "prod" {
		t.Errorf("record = %v; want app/version/env attributes", rec)
	}
}

func TestNewLogger_respectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Config{AppEnv: "prod", LogLevel: slog.LevelWarn}, "1.2.3", "thermogauge")

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn not logged: %q", buf.String())
	}
}
