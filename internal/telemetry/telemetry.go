package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
)

// InstrumentationName names the meter and tracer used by this service
const InstrumentationName = "github.com/xiaotaozi1127/story-teller-backend"

// Telemetry owns the meter and tracer providers. Handler is nil when
// monitoring is disabled.
type Telemetry struct {
	Metrics *Metrics
	Handler http.Handler

	shutdown func(context.Context) error
}

// Setup builds the providers for cfg and installs them globally
func Setup(cfg config.MonitoringConfig, version string) (*Telemetry, error) {
	if !cfg.Enabled {
		metrics, err := NewMetrics(noop.NewMeterProvider().Meter(InstrumentationName))
		if err != nil {
			return nil, err
		}
		return &Telemetry{Metrics: metrics, shutdown: func(context.Context) error { return nil }}, nil
	}

	name := cfg.ServiceName
	if name == "" {
		name = "story-teller-backend"
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(name),
		semconv.ServiceVersion(version),
		attribute.String("component", "api"),
	))
	if err != nil {
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}

	registry := prometheus.NewRegistry()
	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithResource(res))

	otel.SetMeterProvider(meterProvider)
	otel.SetTracerProvider(tracerProvider)

	metrics, err := NewMetrics(meterProvider.Meter(InstrumentationName))
	if err != nil {
		return nil, err
	}

	logger.StdLogger().Infof("Telemetry initialized for %s (prometheus exporter)", name)

	return &Telemetry{
		Metrics: metrics,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		shutdown: func(ctx context.Context) error {
			return errors.Join(meterProvider.Shutdown(ctx), tracerProvider.Shutdown(ctx))
		},
	}, nil
}

// Shutdown flushes and stops the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.shutdown == nil {
		return nil
	}
	return t.shutdown(ctx)
}

// Tracer returns the service tracer from the global provider
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// Metrics holds the synthesis instruments
type Metrics struct {
	chunks          metric.Int64Counter
	chunkSeconds    metric.Float64Histogram
	storiesComplete metric.Int64Counter
}

// NewMetrics registers the instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	chunks, err := meter.Int64Counter("storyteller_chunks",
		metric.WithDescription("Chunks that reached a terminal status"))
	if err != nil {
		return nil, fmt.Errorf("create chunk counter: %w", err)
	}
	chunkSeconds, err := meter.Float64Histogram("storyteller_chunk_synthesis",
		metric.WithDescription("Wall time spent synthesizing one chunk"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create chunk histogram: %w", err)
	}
	storiesComplete, err := meter.Int64Counter("storyteller_stories_completed",
		metric.WithDescription("Stories whose chunks are all terminal"))
	if err != nil {
		return nil, fmt.Errorf("create story counter: %w", err)
	}
	return &Metrics{chunks: chunks, chunkSeconds: chunkSeconds, storiesComplete: storiesComplete}, nil
}

// ChunkFinished records one chunk reaching status after seconds of work
func (m *Metrics) ChunkFinished(ctx context.Context, status string, seconds float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.chunks.Add(ctx, 1, attrs)
	m.chunkSeconds.Record(ctx, seconds, attrs)
}

// StoryCompleted records one story becoming ready
func (m *Metrics) StoryCompleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.storiesComplete.Add(ctx, 1)
}
