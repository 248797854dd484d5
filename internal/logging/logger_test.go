package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSONFormatEmitsFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})

	log.Info("placed cell", "inst", "u1", "site", "X0Y0")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if record["message"] != "placed cell" {
		t.Errorf("message = %v, want %q", record["message"], "placed cell")
	}
	if record["inst"] != "u1" {
		t.Errorf("inst field = %v, want u1", record["inst"])
	}
	if record["site"] != "X0Y0" {
		t.Errorf("site field = %v, want X0Y0", record["site"])
	}
	if record["level"] != "info" {
		t.Errorf("level = %v, want info", record["level"])
	}
}

func TestLevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelWarn, Format: FormatJSON, Output: &buf})

	log.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("Info() at Warn level should produce no output, got %q", buf.String())
	}

	log.Warn("should appear")
	if buf.Len() == 0 {
		t.Error("Warn() at Warn level should produce output")
	}
}

func TestOddFieldCountMarksLogError(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})

	log.Info("dangling field", "key_without_value")

	if !strings.Contains(buf.String(), "odd number of fields") {
		t.Errorf("expected logerr marker in output, got %q", buf.String())
	}
}

func TestNonStringKeyIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})

	log.Info("bad key type", 42, "value")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := record["42"]; ok {
		t.Error("non-string key should have been skipped, not rendered")
	}
}

func TestWithFieldAddsStickyField(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})
	child := log.WithField("stage", "place")

	child.Info("started")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if record["stage"] != "place" {
		t.Errorf("stage field = %v, want place", record["stage"])
	}
}

func TestNopDiscardsOutput(t *testing.T) {
	log := Nop()
	log.Info("nothing should panic or write anywhere")
	log.Warn("still nothing")
	log.Error("still nothing")
	log.Debug("still nothing")
}

func TestTextFormatDoesNotPanic(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelDebug, Format: FormatText, Output: &buf})
	log.Debug("console line", "k", "v")
	if buf.Len() == 0 {
		t.Error("expected console output to be written")
	}
}
