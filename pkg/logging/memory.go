package logging

import "sync"

// MemoryLogger records entries in memory, for tests that assert on diagnostics
type MemoryLogger struct {
	mu      *sync.Mutex
	entries *[]MemoryEntry
	fields  []Field
	level   Level
}

// MemoryEntry is one recorded log call
type MemoryEntry struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// NewMemoryLogger creates a logger that keeps every entry at or above DebugLevel
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{mu: &sync.Mutex{}, entries: &[]MemoryEntry{}, level: DebugLevel}
}

func (m *MemoryLogger) record(level Level, msg string, fields []Field) {
	if level < m.level {
		return
	}
	fm := make(map[string]any, len(m.fields)+len(fields))
	for _, f := range m.fields {
		fm[f.Key] = f.Value
	}
	for _, f := range fields {
		fm[f.Key] = f.Value
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.entries = append(*m.entries, MemoryEntry{Level: level, Message: msg, Fields: fm})
}

func (m *MemoryLogger) Debug(msg string, fields ...Field) { m.record(DebugLevel, msg, fields) }
func (m *MemoryLogger) Info(msg string, fields ...Field)  { m.record(InfoLevel, msg, fields) }
func (m *MemoryLogger) Warn(msg string, fields ...Field)  { m.record(WarnLevel, msg, fields) }
func (m *MemoryLogger) Error(msg string, fields ...Field) { m.record(ErrorLevel, msg, fields) }

func (m *MemoryLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(m.fields)+len(fields))
	merged = append(merged, m.fields...)
	merged = append(merged, fields...)
	return &MemoryLogger{mu: m.mu, entries: m.entries, fields: merged, level: m.level}
}

func (m *MemoryLogger) SetLevel(level Level) { m.level = level }
func (m *MemoryLogger) GetLevel() Level      { return m.level }

// Entries returns a copy of the recorded entries
func (m *MemoryLogger) Entries() []MemoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MemoryEntry, len(*m.entries))
	copy(out, *m.entries)
	return out
}

// Warnings returns recorded entries at WarnLevel
func (m *MemoryLogger) Warnings() []MemoryEntry {
	var out []MemoryEntry
	for _, e := range m.Entries() {
		if e.Level == WarnLevel {
			out = append(out, e)
		}
	}
	return out
}
