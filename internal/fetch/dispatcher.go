// Package fetch downloads the portal exports for a list of tasks and waits
// for every one of them to finish before returning.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"etenderexport/internal/config"
	apperrors "etenderexport/internal/errors"
	"etenderexport/internal/files"
	"etenderexport/internal/infrastructure"
	"etenderexport/internal/tasks"
)

// TracerName is the instrumentation scope used when Options.Tracer is nil
const TracerName = "etenderexport/fetch"

// Download outcome labels used in logs and metrics
const (
	StatusOK        = "ok"
	StatusHTTPError = "http_error"
	StatusEmpty     = "empty"
	StatusNetwork   = "network"
	StatusCancelled = "cancelled"
	StatusStorage   = "storage"
)

// Recorder receives one call per finished download.
type Recorder interface {
	RecordDownload(ctx context.Context, status string, bytes int64, duration time.Duration)
}

// Options configures a Dispatcher
type Options struct {
	Concurrency       int
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	UserAgent         string

	// Client overrides the HTTP client; Timeout is ignored when set.
	Client   *http.Client
	Logger   *slog.Logger
	Recorder Recorder
	// OnResult is called from worker goroutines as each task finishes.
	OnResult func(Result)
	Tracer   trace.Tracer
}

// OptionsFromConfig maps the fetch section of the configuration.
func OptionsFromConfig(cfg config.FetchConfig) Options {
	return Options{
		Concurrency:       cfg.Concurrency,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Timeout:           cfg.HTTPTimeout,
		UserAgent:         cfg.UserAgent,
	}
}

// Dispatcher issues one GET per task and stores each body verbatim.
type Dispatcher struct {
	client      *http.Client
	limiter     *rate.Limiter
	concurrency int
	userAgent   string
	store       *files.Manager
	logger      *slog.Logger
	recorder    Recorder
	onResult    func(Result)
	tracer      trace.Tracer
}

// NewDispatcher creates a dispatcher writing into store.
func NewDispatcher(store *files.Manager, opts Options) *Dispatcher {
	if opts.Concurrency < 1 {
		opts.Concurrency = config.DefaultConcurrency
	}
	if opts.Burst < 1 {
		opts.Burst = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultHTTPTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(TracerName)
	}

	return &Dispatcher{
		client:      client,
		limiter:     rate.NewLimiter(limit, opts.Burst),
		concurrency: opts.Concurrency,
		userAgent:   opts.UserAgent,
		store:       store,
		logger:      opts.Logger,
		recorder:    opts.Recorder,
		onResult:    opts.OnResult,
		tracer:      opts.Tracer,
	}
}

// Dispatch downloads every task and returns once all of them have finished
// or failed. Individual failures are captured in the report and never stop
// the other downloads. Cancelling ctx stops new requests from being issued;
// the returned error is then ctx.Err() alongside the partial report.
func (d *Dispatcher) Dispatch(ctx context.Context, list []tasks.DownloadTask) (*Report, error) {
	start := time.Now()
	results := make([]Result, len(list))

	d.logger.InfoContext(ctx, "Downloads starting",
		slog.Int("tasks", len(list)),
		slog.Int("concurrency", d.concurrency),
		slog.String("dir", d.store.Dir()))

	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for i, task := range list {
		if err := ctx.Err(); err != nil {
			results[i] = cancelled(task, err)
			continue
		}
		g.Go(func() error {
			results[i] = d.fetch(ctx, task)
			if d.onResult != nil {
				d.onResult(results[i])
			}
			return nil
		})
	}

	// wait-all barrier
	_ = g.Wait()

	report := newReport(results, time.Since(start))
	d.logger.InfoContext(ctx, "Downloads finished",
		slog.Int("total", len(results)),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
		slog.Int64("bytes", report.Bytes),
		slog.Duration("duration", report.Duration))

	return report, ctx.Err()
}

func cancelled(task tasks.DownloadTask, err error) Result {
	return Result{
		Task:   task,
		Status: StatusCancelled,
		Err:    apperrors.NewFetchError(task.URL, task.Filename, 0, err),
	}
}

// fetch performs a single download.
func (d *Dispatcher) fetch(ctx context.Context, task tasks.DownloadTask) Result {
	ctx, span := d.tracer.Start(ctx, "fetch.download",
		trace.WithAttributes(
			attribute.String("agency", task.Agency.Code),
			attribute.String("period", task.Period.String()),
			attribute.String("filename", task.Filename),
		))
	defer span.End()

	started := time.Now()
	res := d.download(ctx, task)
	res.Duration = time.Since(started)

	span.SetAttributes(
		attribute.String("status", res.Status),
		attribute.Int("http.status_code", res.StatusCode),
		attribute.Int64("bytes", res.Bytes))
	if res.Err != nil {
		infrastructure.RecordError(span, res.Err, res.Status)
		d.logger.WarnContext(ctx, "Download failed",
			slog.String("file", task.Filename),
			slog.String("status", res.Status),
			slog.Int("http_status", res.StatusCode),
			slog.String("error", res.Err.Error()))
	} else {
		d.logger.DebugContext(ctx, "Download complete",
			slog.String("file", task.Filename),
			slog.Int64("bytes", res.Bytes),
			slog.Duration("duration", res.Duration))
	}

	if d.recorder != nil {
		d.recorder.RecordDownload(ctx, res.Status, res.Bytes, res.Duration)
	}
	return res
}

func (d *Dispatcher) download(ctx context.Context, task tasks.DownloadTask) Result {
	res := Result{Task: task}
	fail := func(status string, code int, cause error) Result {
		res.Status = status
		res.StatusCode = code
		res.Err = apperrors.NewFetchError(task.URL, task.Filename, code, cause)
		return res
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return fail(StatusCancelled, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return fail(StatusNetwork, 0, err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fail(StatusCancelled, 0, err)
		}
		return fail(StatusNetwork, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fail(StatusHTTPError, resp.StatusCode, nil)
	}

	if d.store.FileExists(task.Filename) {
		d.logger.DebugContext(ctx, "Replacing earlier download", slog.String("file", task.Filename))
	}

	pending, err := d.store.Create(task.Filename)
	if err != nil {
		return fail(StatusStorage, resp.StatusCode, err)
	}

	n, err := io.Copy(pending, resp.Body)
	if err != nil {
		pending.Discard()
		return fail(StatusNetwork, resp.StatusCode, fmt.Errorf("reading body: %w", err))
	}
	if n == 0 {
		pending.Discard()
		return fail(StatusEmpty, resp.StatusCode, apperrors.ErrEmptyBody)
	}
	if err := pending.Commit(); err != nil {
		return fail(StatusStorage, resp.StatusCode, err)
	}

	res.Status = StatusOK
	res.StatusCode = resp.StatusCode
	res.Path = pending.FinalPath()
	res.Bytes = n
	return res
}
