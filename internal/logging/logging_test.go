package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_ErrorIncludesStacktrace(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "INFO")

	logger.Error("contact relay failed", "index", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	stack, _ := record["stacktrace"].(string)
	if !strings.Contains(stack, "goroutine") {
		t.Errorf("expected stacktrace attribute, got %v", record["stacktrace"])
	}
	if record["index"] != float64(3) {
		t.Errorf("expected index=3, got %v", record["index"])
	}
}

func TestNew_InfoHasNoStacktrace(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "INFO").With("component", "test").Info("request")

	if strings.Contains(buf.String(), "stacktrace") {
		t.Errorf("info records must not carry a stack trace: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"component":"test"`) {
		t.Errorf("expected attrs preserved through WithAttrs: %s", buf.String())
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "WARN").Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info must be filtered at WARN: %s", buf.String())
	}
}
