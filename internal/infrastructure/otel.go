package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"etenderexport/internal/config"
)

const instrumentationName = "etenderexport"

// OTelProviders holds the telemetry providers of one run
type OTelProviders struct {
	TracerProvider trace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *BusinessMetrics

	// Registry is private to the run so the textfile only carries our series
	Registry *promclient.Registry

	sdkTracer *sdktrace.TracerProvider
	logger    *slog.Logger
}

// OTelOptions overrides where trace output goes. Zero value writes stdout
// traces to stderr.
type OTelOptions struct {
	TraceWriter io.Writer
}

// InitializeOTel sets up tracing and metrics from the telemetry section.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger, opts ...OTelOptions) (*OTelProviders, error) {
	if logger == nil {
		logger = GetLogger()
	}
	var o OTelOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.TraceWriter == nil {
		o.TraceWriter = os.Stderr
	}

	res, err := createResource()
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{logger: logger}

	if err := providers.initializeTracing(cfg.TraceExporter, o.TraceWriter, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := providers.initializeMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Debug("OpenTelemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metrics_file", cfg.MetricsFile))

	return providers, nil
}

func createResource() (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName()),
		semconv.ServiceVersion(config.AppVersion),
	), nil
}

// serviceName turns the display name into a resource-friendly identifier.
func serviceName() string {
	return strings.ToLower(strings.ReplaceAll(config.AppName, " ", "-"))
}

func (p *OTelProviders) initializeTracing(exporter string, w io.Writer, res *resource.Resource) error {
	switch strings.ToLower(exporter) {
	case "stdout":
		exp, err := stdouttrace.New(
			stdouttrace.WithWriter(w),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		otel.SetTracerProvider(tp)
		p.sdkTracer = tp
		p.TracerProvider = tp
	case "", "none":
		p.TracerProvider = noop.NewTracerProvider()
	default:
		return fmt.Errorf("unsupported trace exporter: %s", exporter)
	}

	p.Tracer = p.TracerProvider.Tracer(instrumentationName)
	return nil
}

func (p *OTelProviders) initializeMetrics(res *resource.Resource) error {
	reg := promclient.NewRegistry()

	exporter, err := prometheus.New(
		prometheus.WithRegisterer(reg),
		prometheus.WithoutUnits(),
		prometheus.WithoutCounterSuffixes(),
	)
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	p.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	p.Meter = p.MeterProvider.Meter(instrumentationName)
	p.Registry = reg

	p.Metrics, err = NewBusinessMetrics(p.Meter)
	return err
}

// WriteMetricsFile dumps the current metric values in Prometheus text format.
// An empty path is a no-op.
func (p *OTelProviders) WriteMetricsFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := promclient.WriteToTextfile(path, p.Registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", path, err)
	}
	p.logger.Debug("Metrics written", slog.String("path", path))
	return nil
}

// Shutdown flushes and stops the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.sdkTracer != nil {
		if err := p.sdkTracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}

	return errors.Join(errs...)
}

// BusinessMetrics are the run counters written to the metrics file
type BusinessMetrics struct {
	DownloadsTotal   metric.Int64Counter
	DownloadBytes    metric.Int64Counter
	DownloadDuration metric.Float64Histogram
	CombinedRows     metric.Int64Counter
	StepDuration     metric.Float64Histogram
}

// NewBusinessMetrics registers the export instruments on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		bm  BusinessMetrics
		err error
	)

	bm.DownloadsTotal, err = meter.Int64Counter(
		"etender_downloads_total",
		metric.WithDescription("Download attempts by outcome"),
	)
	if err != nil {
		return nil, err
	}

	bm.DownloadBytes, err = meter.Int64Counter(
		"etender_download_bytes_total",
		metric.WithDescription("Bytes stored from successful downloads"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	bm.DownloadDuration, err = meter.Float64Histogram(
		"etender_download_duration_seconds",
		metric.WithDescription("Time spent on a single download"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, err
	}

	bm.CombinedRows, err = meter.Int64Counter(
		"etender_combined_rows_total",
		metric.WithDescription("Rows written to the combined CSV"),
	)
	if err != nil {
		return nil, err
	}

	bm.StepDuration, err = meter.Float64Histogram(
		"etender_step_duration_seconds",
		metric.WithDescription("Duration of each pipeline step"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &bm, nil
}

// RecordDownload records one finished download.
func (bm *BusinessMetrics) RecordDownload(ctx context.Context, status string, bytes int64, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	bm.DownloadsTotal.Add(ctx, 1, attrs)
	bm.DownloadDuration.Record(ctx, duration.Seconds(), attrs)
	if bytes > 0 {
		bm.DownloadBytes.Add(ctx, bytes)
	}
}

// RecordCombinedRows adds to the combined row counter
func (bm *BusinessMetrics) RecordCombinedRows(ctx context.Context, rows int) {
	bm.CombinedRows.Add(ctx, int64(rows))
}

// RecordStep records how long a pipeline step ran and how it ended.
func (bm *BusinessMetrics) RecordStep(ctx context.Context, step, status string, duration time.Duration) {
	bm.StepDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("step", step),
			attribute.String("status", status),
		))
}

// RecordError marks span as failed
func RecordError(span trace.Span, err error, description string) {
	if err == nil || span == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, description)
}

// TraceIDFromContext returns the OpenTelemetry trace ID of the active span,
// or an empty string when none is recording.
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
