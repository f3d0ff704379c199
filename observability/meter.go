package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/skillsenselab/diard/logger"
)

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, serviceName, version string, cfg Config) (*sdkmetric.MeterProvider, error) {
	cfg.ApplyDefaults()

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(serviceName, version)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval))),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", serviceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the metric instruments for the diarization pipeline.
type Metrics struct {
	requestTotal     metric.Int64Counter
	requestDuration  metric.Float64Histogram
	diarizeDuration  metric.Float64Histogram
	uploadBytes      metric.Int64Histogram
	segmentsPerAudio metric.Int64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestTotal, err := meter.Int64Counter("diarize.request.total",
		metric.WithDescription("Total diarization requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating diarize.request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("diarize.request.duration",
		metric.WithDescription("End-to-end request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating diarize.request.duration histogram: %w", err)
	}

	diarizeDuration, err := meter.Float64Histogram("diarize.engine.duration",
		metric.WithDescription("Engine invocation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating diarize.engine.duration histogram: %w", err)
	}

	uploadBytes, err := meter.Int64Histogram("diarize.upload.bytes",
		metric.WithDescription("Uploaded audio payload size"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating diarize.upload.bytes histogram: %w", err)
	}

	segmentsPerAudio, err := meter.Int64Histogram("diarize.segments",
		metric.WithDescription("Speaker segments per processed recording"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating diarize.segments histogram: %w", err)
	}

	return &Metrics{
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		diarizeDuration:  diarizeDuration,
		uploadBytes:      uploadBytes,
		segmentsPerAudio: segmentsPerAudio,
	}, nil
}

// RecordRequest records one completed diarization request.
// A nil *Metrics is safe: recording is silently skipped.
func (m *Metrics) RecordRequest(ctx context.Context, status string, uploadSize int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("status", status)))
	m.uploadBytes.Record(ctx, int64(uploadSize))
}

// RecordEngine records one engine invocation.
func (m *Metrics) RecordEngine(ctx context.Context, segments int, duration time.Duration) {
	if m == nil {
		return
	}
	m.diarizeDuration.Record(ctx, duration.Seconds())
	m.segmentsPerAudio.Record(ctx, int64(segments))
}
