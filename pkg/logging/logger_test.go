package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DebugLevel},
		{" INFO ", InfoLevel},
		{"warning", WarnLevel},
		{"WARN", WarnLevel},
		{"error", ErrorLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("TEXT") != FormatText {
		t.Error("expected text format")
	}
	if ParseFormat("json") != FormatJSON || ParseFormat("") != FormatJSON {
		t.Error("expected json format by default")
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestJSONLoggerFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewJSONLogger(buf, InfoLevel)

	logger.Info("comparing entity", Entity("Token"), Phase("ordered"), Count(3))

	entries := decodeLines(t, buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != "INFO" || e.Message != "comparing entity" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Fields["entity"] != "Token" || e.Fields["phase"] != "ordered" {
		t.Errorf("unexpected fields %v", e.Fields)
	}
	if e.Fields["count"] != float64(3) {
		t.Errorf("count = %v", e.Fields["count"])
	}
	if _, err := time.Parse(time.RFC3339Nano, e.Time); err != nil {
		t.Errorf("bad timestamp %q", e.Time)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewJSONLogger(buf, WarnLevel)

	logger.Debug("query sent")
	logger.Info("entities discovered")
	logger.Warn("dropping candidate")
	logger.Error("transport failed", Error(errors.New("connection refused")))

	entries := decodeLines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Fields["error"] != "connection refused" {
		t.Errorf("error field = %v", entries[1].Fields["error"])
	}
}

func TestWithSharesLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := NewJSONLogger(buf, InfoLevel)
	child := parent.With(RunID("run-1"), Role("sample"))

	child.Info("query", Query("{ tokens(limit: 1) { id } }"))
	parent.SetLevel(ErrorLevel)
	child.Info("suppressed")

	entries := decodeLines(t, buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Fields["run_id"] != "run-1" || entries[0].Fields["role"] != "sample" {
		t.Errorf("missing inherited fields: %v", entries[0].Fields)
	}
	if child.GetLevel() != ErrorLevel {
		t.Errorf("child level = %v", child.GetLevel())
	}
}

func TestTextFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, FormatText, DebugLevel)

	logger.Warn("candidate dropped", Entity("Pool"), String("reason", "missing queries"))

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, " WARN candidate dropped ") {
		t.Errorf("unexpected line %q", line)
	}
	// keys are sorted, values with spaces are quoted
	if !strings.HasSuffix(line, `entity=Pool reason="missing queries"`) {
		t.Errorf("unexpected fields in %q", line)
	}
}

func TestTimedOperation(t *testing.T) {
	mem := NewMemoryLogger()
	op := StartTimer(mem, "introspection", Endpoint("http://localhost:4350/graphql"))
	op.End()
	op.EndError(errors.New("boom"))

	entries := mem.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != DebugLevel || entries[1].Level != ErrorLevel {
		t.Errorf("unexpected levels %v %v", entries[0].Level, entries[1].Level)
	}
	if _, ok := entries[0].Fields["latency"]; !ok {
		t.Error("latency field missing")
	}
	if entries[1].Fields["error"] != "boom" {
		t.Errorf("error = %v", entries[1].Fields["error"])
	}
}

func TestMemoryLoggerWarnings(t *testing.T) {
	mem := NewMemoryLogger()
	child := mem.With(Component("entities"))
	child.Info("found")
	child.Warn("collision", Entity("token"))

	warnings := mem.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].Fields["component"] != "entities" || warnings[0].Fields["entity"] != "token" {
		t.Errorf("unexpected fields %v", warnings[0].Fields)
	}
}

func TestNopLogger(t *testing.T) {
	var l Logger = NewNopLogger()
	l.Info("ignored")
	if l.With(Entity("x")) == nil {
		t.Error("With should return a logger")
	}
	if l.GetLevel() != InfoLevel {
		t.Error("nop logger reports info level")
	}
}
