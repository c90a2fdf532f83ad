package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	log := &logger{slogger: slog.New(handler)}

	log.Info("mount lost", "path", "/mnt/a")

	output := buf.String()
	if !strings.Contains(output, "mount lost") {
		t.Errorf("output missing message: %q", output)
	}
	if !strings.Contains(output, "path=/mnt/a") {
		t.Errorf("output missing field: %q", output)
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	log := &logger{slogger: slog.New(handler)}

	log.Error("probe failed", "path", "/mnt/b")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if record["msg"] != "probe failed" {
		t.Errorf("msg = %v, want %q", record["msg"], "probe failed")
	}
	if record["path"] != "/mnt/b" {
		t.Errorf("path = %v, want %q", record["path"], "/mnt/b")
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, nil)
	log := &logger{slogger: slog.New(handler)}

	scoped := log.With("component", "watcher")
	scoped.Info("started")

	if !strings.Contains(buf.String(), "component=watcher") {
		t.Errorf("output missing context field: %q", buf.String())
	}
}

func TestGetWriterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nofus.log")

	w, err := getWriter(path)
	if err != nil {
		t.Fatalf("getWriter(%q) error = %v", path, err)
	}

	if _, err := w.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if f, ok := w.(*os.File); ok {
		if closeErr := f.Close(); closeErr != nil {
			t.Errorf("Close() error = %v", closeErr)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("file contents = %q, want %q", data, "hello\n")
	}
}

func TestGetWriterStandardStreams(t *testing.T) {
	if w, err := getWriter("stdout"); err != nil || w != os.Stdout {
		t.Errorf("getWriter(stdout) = %v, %v", w, err)
	}
	if w, err := getWriter("stderr"); err != nil || w != os.Stderr {
		t.Errorf("getWriter(stderr) = %v, %v", w, err)
	}
	if w, err := getWriter(""); err != nil || w != os.Stderr {
		t.Errorf("getWriter(\"\") = %v, %v", w, err)
	}
}

func TestNoop(t *testing.T) {
	log := Noop()

	// Should not panic or produce output anywhere visible.
	log.Debug("debug")
	log.Info("info")
	log.Warn("warn")
	log.Error("error")
	log.With("k", "v").Info("scoped")
}

func TestDefault(t *testing.T) {
	if log := Default(); log == nil {
		t.Fatal("Default() returned nil")
	}
}
