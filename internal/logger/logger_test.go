package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetGlobal(t *testing.T) {
	t.Helper()
	initMu.Lock()
	globalLogger = nil
	initialized = false
	initMu.Unlock()
	t.Cleanup(func() {
		initMu.Lock()
		globalLogger = nil
		initialized = false
		initMu.Unlock()
	})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"ERROR":   LevelError,
		"none":    LevelNone,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "einzel.log")
	l, err := New(LevelDebug, logPath, "test")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer l.Close()

	l.Info("hello %s", "world")
	l.Debug("detail")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "[INFO] [test] hello world") {
		t.Errorf("log file missing info line: %q", content)
	}
	if !strings.Contains(content, "[DEBUG] [test] detail") {
		t.Errorf("log file missing debug line: %q", content)
	}
}

func TestLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "einzel.log")
	l, err := New(LevelWarn, logPath, "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer l.Close()

	l.Info("should be filtered")
	l.Error("should appear")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "should be filtered") {
		t.Errorf("info line leaked through warn level: %q", content)
	}
	if !strings.Contains(content, "should appear") {
		t.Errorf("error line missing: %q", content)
	}
}

func TestDisabledLogger(t *testing.T) {
	l, err := New(LevelNone, "", "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	// Must not panic or create files.
	l.Error("into the void")
}

func TestInitConsoleAfterFailedInit(t *testing.T) {
	resetGlobal(t)

	// A regular file where the log directory should be makes Init fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("writing blocker file: %v", err)
	}
	if err := Init(LevelInfo, filepath.Join(blocker, "einzel.log")); err == nil {
		t.Fatal("Init with unusable log path did not fail")
	}

	var buf bytes.Buffer
	InitConsole(LevelInfo, &buf)
	Info("fallback %s", "works")

	if !strings.Contains(buf.String(), "[INFO] fallback works") {
		t.Errorf("console fallback missing after failed Init: %q", buf.String())
	}
}

func TestInitConsoleOnlyFirstWins(t *testing.T) {
	resetGlobal(t)

	var first, second bytes.Buffer
	InitConsole(LevelInfo, &first)
	InitConsole(LevelInfo, &second)
	Info("routed")

	if !strings.Contains(first.String(), "routed") {
		t.Errorf("first console writer missing line: %q", first.String())
	}
	if second.Len() != 0 {
		t.Errorf("second InitConsole took effect: %q", second.String())
	}
}

func TestWithPrefix(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "einzel.log")
	l, err := New(LevelDebug, logPath, "lock")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer l.Close()

	l.WithPrefix("listener").Info("accepted")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "[lock:listener] accepted") {
		t.Errorf("nested prefix missing: %q", string(data))
	}
}
