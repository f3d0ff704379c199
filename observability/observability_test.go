package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("unexpected default endpoint: %q", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("unexpected default sample rate: %v", cfg.SampleRate)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("unexpected default interval: %v", cfg.Interval)
	}
}

func TestStartSpanNoop(t *testing.T) {
	// Without an initialized provider, spans are no-ops but must be usable.
	ctx, span := StartSpan(context.Background(), SpanDiarize)
	if span == nil {
		t.Fatal("expected non-nil span")
	}
	SetSpanAttribute(ctx, "segments", 3)
	SetSpanError(ctx, context.Canceled)
	span.End()
}

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics(otel.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	// No-op providers must still accept recordings.
	m.RecordRequest(context.Background(), "success", 1024, 2*time.Second)
	m.RecordEngine(context.Background(), 3, time.Second)
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest(context.Background(), "error", 0, 0)
	m.RecordEngine(context.Background(), 0, 0)
}
