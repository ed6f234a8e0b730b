package log

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestInit_StderrLevels(t *testing.T) {
	var stderr bytes.Buffer
	if err := Init(Options{Stderr: &stderr}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close()

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	output := stderr.String()
	for _, hidden := range []string{"debug message", "info message"} {
		if strings.Contains(output, hidden) {
			t.Errorf("%q should not appear on stderr without --verbose", hidden)
		}
	}
	for _, shown := range []string{"warn message", "error message"} {
		if !strings.Contains(output, shown) {
			t.Errorf("%q should appear on stderr", shown)
		}
	}
}

func TestInit_Verbose(t *testing.T) {
	var stderr bytes.Buffer
	if err := Init(Options{Verbose: true, Stderr: &stderr}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close()

	Debug("planned build", "plugin", "docker")

	if !strings.Contains(stderr.String(), "planned build") {
		t.Errorf("debug should appear on stderr in verbose mode, got %q", stderr.String())
	}
}

func TestInit_JSON(t *testing.T) {
	var stderr bytes.Buffer
	if err := Init(Options{JSON: true, Stderr: &stderr}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close()

	SetCommand("build")
	Warn("container removal failed", "id", "abc123")

	var record map[string]any
	if err := json.Unmarshal(stderr.Bytes(), &record); err != nil {
		t.Fatalf("stderr is not JSON: %v (%q)", err, stderr.String())
	}
	if record["msg"] != "container removal failed" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["command"] != "build" {
		t.Errorf("command = %v, want build", record["command"])
	}
}

func TestInit_DebugFile(t *testing.T) {
	dir := t.TempDir()
	var stderr bytes.Buffer
	if err := Init(Options{DebugDir: dir, Stderr: &stderr}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	path := logFile.Path()

	Debug("resolved toolchain", "go", "1.21")
	Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(content), "resolved toolchain") {
		t.Errorf("debug file should contain debug records, got: %s", content)
	}
	if strings.Contains(stderr.String(), "resolved toolchain") {
		t.Error("debug record leaked to stderr")
	}
}
