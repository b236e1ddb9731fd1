package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/raysh454/web2api/internal/logging"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestStdoutLogger_WritesJSONWithComponentAndFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := logging.NewStdoutLoggerWithOptions("fetcher", logging.Options{Output: &buf})

	l.Info("fetched page", logging.Field{Key: "status", Value: 200}, logging.Field{Key: "error", Value: errors.New("boom")})

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	if got["msg"] != "fetched page" || got["level"] != "INFO" {
		t.Errorf("unexpected entry: %v", got)
	}
	if got["component"] != "fetcher" {
		t.Errorf("component = %v, want fetcher", got["component"])
	}
	fields, ok := got["fields"].(map[string]any)
	if !ok {
		t.Fatalf("fields missing: %v", got)
	}
	if fields["status"] != float64(200) {
		t.Errorf("status = %v", fields["status"])
	}
	if fields["error"] != "boom" {
		t.Errorf("error = %v, want boom", fields["error"])
	}
}

func TestStdoutLogger_LevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := logging.NewStdoutLoggerWithOptions("x", logging.Options{Output: &buf, Level: "warn"})

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines at warn level, got %d", len(lines))
	}
}

func TestStdoutLogger_WithCarriesFieldsAndComponent(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	root := logging.NewStdoutLoggerWithOptions("app", logging.Options{Output: &buf})
	child := root.With(logging.Field{Key: "component", Value: "capture"}, logging.Field{Key: "run_id", Value: "abc"})

	child.Info("hello")
	root.Info("root")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0]["component"] != "capture" || lines[0]["run_id"] != "abc" {
		t.Errorf("child line = %v", lines[0])
	}
	if lines[1]["component"] != "app" {
		t.Errorf("root component changed: %v", lines[1])
	}
	if _, ok := lines[1]["run_id"]; ok {
		t.Errorf("root inherited child field: %v", lines[1])
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]string{"debug": "DEBUG", "WARNING": "WARN", "error": "ERROR", "": "INFO", "bogus": "INFO"}
	for in, want := range cases {
		if got := logging.ParseLevel(in).String(); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
