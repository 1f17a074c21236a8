// Package telemetry provides OpenTelemetry tracing and metrics for the relay
// node: per-cycle counters, submission results by strategy, admission
// rejections, and cycle duration.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Config configures the OpenTelemetry providers.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	SampleRate     float64
	BatchTimeout   time.Duration
	Enabled        bool
	Insecure       bool
}

// DefaultConfig returns defaults with telemetry disabled; the node enables it
// explicitly when an OTLP endpoint is configured.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "edge-connect",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		OTLPEndpoint:   "localhost:4317",
		SampleRate:     1.0,
		BatchTimeout:   5 * time.Second,
		Enabled:        false,
		Insecure:       false,
	}
}

// Provider manages the trace and metric providers. A nil or disabled
// Provider is safe to call; every recording method no-ops.
type Provider struct {
	config         *Config
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter
	logger         *slog.Logger

	cycleCounter      metric.Int64Counter
	submissionCounter metric.Int64Counter
	rejectionCounter  metric.Int64Counter
	cycleDuration     metric.Float64Histogram
}

// New creates a telemetry provider.
func New(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Provider{
		config: config,
		logger: slog.Default().With("component", "telemetry"),
	}

	if !config.Enabled {
		p.logger.InfoContext(ctx, "telemetry disabled")
		return p, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			semconv.DeploymentEnvironment(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := p.initTraceProvider(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to init trace provider: %w", err)
	}
	if err := p.initMetricProvider(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to init metric provider: %w", err)
	}

	p.tracer = otel.Tracer("edge-connect",
		trace.WithInstrumentationVersion(config.ServiceVersion),
	)
	p.meter = otel.Meter("edge-connect",
		metric.WithInstrumentationVersion(config.ServiceVersion),
	)

	if err := p.initRelayMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init relay metrics: %w", err)
	}

	p.logger.InfoContext(ctx, "telemetry initialized",
		"service", config.ServiceName,
		"environment", config.Environment,
		"endpoint", config.OTLPEndpoint,
	)
	return p, nil
}

func (p *Provider) initTraceProvider(ctx context.Context, res *resource.Resource) error {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(p.config.OTLPEndpoint),
	}
	if p.config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case p.config.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case p.config.SampleRate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(p.config.SampleRate)
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(p.config.BatchTimeout),
		),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(p.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return nil
}

func (p *Provider) initMetricProvider(ctx context.Context, res *resource.Resource) error {
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(p.config.OTLPEndpoint),
	}
	if p.config.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create metric exporter: %w", err)
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(15*time.Second),
		)),
	)
	otel.SetMeterProvider(p.meterProvider)
	return nil
}

func (p *Provider) initRelayMetrics() error {
	var err error

	p.cycleCounter, err = p.meter.Int64Counter("edgeconnect.relay.cycles.total",
		metric.WithDescription("Total relay cycles executed"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return err
	}

	p.submissionCounter, err = p.meter.Int64Counter("edgeconnect.relay.submissions.total",
		metric.WithDescription("Transaction submissions by strategy and result"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return err
	}

	p.rejectionCounter, err = p.meter.Int64Counter("edgeconnect.pool.rejections.total",
		metric.WithDescription("Unsigned transactions rejected at admission"),
		metric.WithUnit("{transaction}"),
	)
	if err != nil {
		return err
	}

	p.cycleDuration, err = p.meter.Float64Histogram("edgeconnect.relay.cycle.duration",
		metric.WithDescription("Relay cycle duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0),
	)
	return err
}

func (p *Provider) enabled() bool {
	return p != nil && p.config != nil && p.config.Enabled
}

// RecordCycle records one relay cycle with its chosen strategy and result.
func (p *Provider) RecordCycle(ctx context.Context, strategy string, failed bool, duration time.Duration) {
	if !p.enabled() {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("strategy", strategy),
		attribute.Bool("failed", failed),
	)
	p.cycleCounter.Add(ctx, 1, attrs)
	p.cycleDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordSubmission records per-account submission results for one strategy.
func (p *Provider) RecordSubmission(ctx context.Context, strategy string, succeeded, failed int) {
	if !p.enabled() {
		return
	}
	if succeeded > 0 {
		p.submissionCounter.Add(ctx, int64(succeeded), metric.WithAttributes(
			attribute.String("strategy", strategy),
			attribute.String("result", "ok"),
		))
	}
	if failed > 0 {
		p.submissionCounter.Add(ctx, int64(failed), metric.WithAttributes(
			attribute.String("strategy", strategy),
			attribute.String("result", "error"),
		))
	}
}

// RecordRejection counts one unsigned transaction rejected at admission,
// labeled by reason ("invalid" or "duplicate").
func (p *Provider) RecordRejection(ctx context.Context, reason string) {
	if !p.enabled() {
		return
	}
	p.rejectionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// Tracer returns the provider's tracer; safe on a disabled provider.
func (p *Provider) Tracer() trace.Tracer {
	if !p.enabled() || p.tracer == nil {
		return otel.Tracer("edge-connect")
	}
	return p.tracer
}

// Shutdown flushes and stops the providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.enabled() {
		return nil
	}
	var firstErr error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
