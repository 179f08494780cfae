package logx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/smnsjas/go-uaproxy/ua"
)

type recordLogger struct {
	lines []string
}

func (r *recordLogger) Printf(format string, v ...interface{}) {
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
}

func TestSink_Printf(t *testing.T) {
	rec := &recordLogger{}
	s := New(rec, nil)

	s.Logf(ua.Server, "read %s", "Value")

	if len(rec.lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(rec.lines))
	}
	if rec.lines[0] != "[i=2253] read Value" {
		t.Errorf("unexpected line %q", rec.lines[0])
	}
}

func TestSink_SlogOutput(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	s := New(nil, slog.New(handler))

	s.Logf(ua.NewStringNodeID(2, "Pump1"), "test message %d", 123)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log JSON: %v", err)
	}
	if entry["msg"] != "test message 123" {
		t.Errorf("expected msg 'test message 123', got '%v'", entry["msg"])
	}
	if entry["level"] != "DEBUG" {
		t.Errorf("expected level DEBUG, got %v", entry["level"])
	}
	if entry["node_id"] != "ns=2;s=Pump1" {
		t.Errorf("expected node_id ns=2;s=Pump1, got %v", entry["node_id"])
	}
}

func TestSink_Disabled(t *testing.T) {
	var nilSink *Sink
	if nilSink.Enabled() {
		t.Error("nil sink must be disabled")
	}
	nilSink.Logf(ua.Server, "ignored")

	s := New(nil, nil)
	if s.Enabled() {
		t.Error("empty sink must be disabled")
	}
	s.SetLogger(&recordLogger{})
	if !s.Enabled() {
		t.Error("sink with logger must be enabled")
	}
}
