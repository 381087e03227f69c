package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quizbuddy/internal/config"
)

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log := New(config.App{Env: "test", LogLevel: "debug", LogFile: path})
	log.Debug("hello file")
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"msg":"hello file"`) || !strings.Contains(string(raw), `"env":"test"`) {
		t.Fatalf("log file = %s", raw)
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}
