package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bysel/config"
)

// go test -v --run TestNewConsole
func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := newWithWriter(config.LogConfig{Level: "info", Format: "console"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log.Debug("hidden")
	log.Info("quotes refreshed")
	_ = log.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered at info level: %q", out)
	}
	if !strings.Contains(out, "quotes refreshed") {
		t.Errorf("expected info line in output, got %q", out)
	}
}

// go test -v --run TestNewInvalidLevel
func TestNewInvalidLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

// go test -v --run TestNewWithFile
func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bysel.log")
	var buf bytes.Buffer
	log, err := newWithWriter(config.LogConfig{Level: "debug", Format: "json", OutputFile: path}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info("to file")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"to file"`) {
		t.Errorf("expected json line in file, got %q", data)
	}
}
