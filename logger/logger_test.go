package logger

import (
	"errors"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("diard")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "diard" {
		t.Errorf("expected service 'diard', got %q", l.service)
	}
}

func TestNew(t *testing.T) {
	cfg := &Config{
		Level:  "debug",
		Format: "json",
		Output: "stdout",
	}
	l := New(cfg, "diard")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{
		Level:  "invalid-level",
		Format: "json",
		Output: "stdout",
	}
	l := New(cfg, "diard")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("diard")
	cl := l.WithComponent("staging")
	if cl == nil {
		t.Fatal("expected non-nil logger")
	}
	if cl.service != "diard" {
		t.Errorf("service should be preserved, got %q", cl.service)
	}
}

func TestWithError(t *testing.T) {
	l := NewDefault("diard")
	if l.WithError(errors.New("boom")) == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestFields(t *testing.T) {
	m := Fields("op", "diarize", "segments", 3)
	if m["op"] != "diarize" {
		t.Errorf("expected op=diarize, got %v", m["op"])
	}
	if m["segments"] != 3 {
		t.Errorf("expected segments=3, got %v", m["segments"])
	}
}

func TestFieldsOddArgs(t *testing.T) {
	m := Fields("op", "diarize", "dangling")
	if len(m) != 1 {
		t.Errorf("expected dangling key to be dropped, got %v", m)
	}
}

func TestErrorFields(t *testing.T) {
	m := ErrorFields("stage", errors.New("disk full"))
	if m[FieldOperation] != "stage" {
		t.Errorf("expected operation=stage, got %v", m[FieldOperation])
	}
	if m[FieldError] != "disk full" {
		t.Errorf("expected error field, got %v", m[FieldError])
	}
}

func TestDurationFields(t *testing.T) {
	m := DurationFields("diarize", 1500*time.Millisecond)
	if m[FieldDuration] != int64(1500) {
		t.Errorf("expected duration_ms=1500, got %v", m[FieldDuration])
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Level: "info", Format: "json"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg = Config{Level: "verbose", Format: "json"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid level")
	}

	cfg = Config{Level: "info", Format: "xml"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamps enabled by default")
	}
}

func TestGetGlobalLogger(t *testing.T) {
	globalLogger = nil
	l := GetGlobalLogger()
	if l == nil {
		t.Fatal("expected lazily created global logger")
	}
	if GetGlobalLogger() != l {
		t.Error("expected same global instance")
	}
}
