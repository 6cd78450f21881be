package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_FileWritesJSONLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "taskdeck.log")
	l, err := New(Options{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("loaded tasks", zap.Int("count", 3))
	_ = l.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(b))
	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("expected JSON log line; got %q (%v)", line, err)
	}
	if rec["msg"] != "loaded tasks" || rec["level"] != "debug" || rec["count"] != float64(3) {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "taskdeck.log")
	l, err := New(Options{Level: "warn", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("dropped")
	l.Warn("kept")
	_ = l.Sync()

	b, _ := os.ReadFile(path)
	if strings.Contains(string(b), "dropped") || !strings.Contains(string(b), "kept") {
		t.Fatalf("unexpected log contents: %q", b)
	}
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{Level: "chatty"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestInstallRestores(t *testing.T) {
	before := zap.L()
	l := zap.NewNop()
	restore := Install(l)
	if zap.L() != l {
		t.Fatalf("expected installed logger")
	}
	restore()
	if zap.L() != before {
		t.Fatalf("expected previous logger restored")
	}
}
