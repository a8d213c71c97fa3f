package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/conorfennell/notedeck/internal/config"
)

func TestNewJSON(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger := New(config.Log{Level: "warn", Format: "json"}, &buf)

	logger.Info("dropped")
	logger.Warn("kept", "entry_id", "abc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected one line at warn level, but got %q", buf.String())
	}
	var record map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("Expected JSON output, but got %q: %v", lines[0], err)
	}
	if record["msg"] != "kept" || record["entry_id"] != "abc" {
		t.Errorf("Expected msg=kept entry_id=abc, but got %v", record)
	}
}

func TestNewText(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	New(config.Log{Level: "debug", Format: "text"}, &buf)
	slog.Debug("hello", "count", 2)

	if !strings.Contains(buf.String(), "msg=hello") || !strings.Contains(buf.String(), "count=2") {
		t.Errorf("Expected text output through the default logger, but got %q", buf.String())
	}
}
