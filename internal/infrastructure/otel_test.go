package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"etenderexport/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{TraceExporter: "none"}, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Metrics)
	assert.NotNil(t, providers.Registry)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelStdoutTraces(t *testing.T) {
	var buf bytes.Buffer
	providers, err := InitializeOTel(
		config.TelemetryConfig{TraceExporter: "stdout"},
		quietLogger(),
		OTelOptions{TraceWriter: &buf},
	)
	require.NoError(t, err)

	_, span := providers.Tracer.Start(context.Background(), "combine")
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name": "combine"`)
}

func TestOTelUnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(config.TelemetryConfig{TraceExporter: "jaeger"}, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestWriteMetricsFile(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{TraceExporter: "none"}, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx := context.Background()
	m := providers.Metrics
	m.RecordDownload(ctx, "ok", 2048, 300*time.Millisecond)
	m.RecordDownload(ctx, "ok", 1024, 100*time.Millisecond)
	m.RecordDownload(ctx, "http_error", 0, 50*time.Millisecond)
	m.RecordCombinedRows(ctx, 42)
	m.RecordStep(ctx, "download", "completed", 2*time.Second)

	path := filepath.Join(t.TempDir(), "logs", "etender.prom")
	require.NoError(t, providers.WriteMetricsFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `etender_downloads_total{`)
	assert.Contains(t, text, `status="ok"`)
	assert.Contains(t, text, `status="http_error"`)
	assert.Contains(t, text, "etender_download_bytes_total")
	assert.Contains(t, text, "3072")
	assert.Contains(t, text, "etender_combined_rows_total")
	assert.Contains(t, text, "etender_download_duration_seconds_bucket")
	assert.Contains(t, text, `step="download"`)
}

func TestWriteMetricsFileDisabled(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{}, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.NoError(t, providers.WriteMetricsFile(""))
}

func TestRecordError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "step")
	RecordError(span, errors.New("boom"), "step failed")
	RecordError(span, nil, "ignored")
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "step failed", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

func TestTraceIDFromContext(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	id := TraceIDFromContext(ctx)
	assert.Len(t, id, 32)
	assert.Equal(t, span.SpanContext().TraceID().String(), id)
}
