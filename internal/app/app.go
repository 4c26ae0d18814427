package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"etenderexport/internal/combiner"
	"etenderexport/internal/config"
	"etenderexport/internal/exporter"
	"etenderexport/internal/fetch"
	"etenderexport/internal/files"
	"etenderexport/internal/infrastructure"
	"etenderexport/internal/operations"
	"etenderexport/internal/spreadsheet"
	"etenderexport/internal/tasks"
	"etenderexport/internal/validation"
)

// Options adjusts how an Application is built
type Options struct {
	// ConfigPath selects a YAML file; empty uses the default lookup
	ConfigPath string
	// LogLevel overrides the configured level when set
	LogLevel string
	// Console receives user-facing progress; defaults to os.Stdout
	Console io.Writer
	// Clock defaults to time.Now
	Clock func() time.Time
	// HTTPClient replaces the download client
	HTTPClient *http.Client
}

// Application holds everything a command needs for one process
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Plan          tasks.Plan
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	console    io.Writer
	clock      func() time.Time
	httpClient *http.Client
	validator  *validation.FileValidator
}

// NewApplication loads configuration and initializes logging and telemetry.
func NewApplication(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.LogLevel, err)
		}
	}

	paths, err := config.GetPaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	cfg.Logging.FilePath = paths.LogFile

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	plan := tasks.PlanFromConfig(cfg.Export)
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Application{
		Config:        cfg,
		Paths:         paths,
		Plan:          plan,
		Logger:        logger,
		OTelProviders: providers,
		console:       opts.Console,
		clock:         opts.Clock,
		httpClient:    opts.HTTPClient,
		validator:     validation.NewFileValidator(logger),
	}, nil
}

// Console returns the writer used for user-facing output
func (a *Application) Console() io.Writer {
	return a.console
}

// Export runs the full export: folders, plan, download, combine.
func (a *Application) Export(ctx context.Context) (*operations.RunState, error) {
	return a.execute(ctx, a.prepareStep(), a.planStep(), a.downloadStep(), a.combineStep())
}

// Download runs folders, plan and download without combining.
func (a *Application) Download(ctx context.Context) (*operations.RunState, error) {
	return a.execute(ctx, a.prepareStep(), a.planStep(), a.downloadStep())
}

// Combine combines whatever is in the download folder now.
func (a *Application) Combine(ctx context.Context) (*operations.RunState, error) {
	return a.execute(ctx, a.prepareStep(), a.combineStep())
}

// Tasks lists the downloads a run started now would perform
func (a *Application) Tasks() []tasks.DownloadTask {
	return tasks.Generate(a.Plan, a.clock())
}

// WriteTaskList saves list as a CSV with one row per task, including where
// each download will be saved. Relative paths land in the combined folder.
func (a *Application) WriteTaskList(path string, list []tasks.DownloadTask) (string, error) {
	records := make([][]string, len(list))
	for i, t := range list {
		records[i] = []string{
			strconv.Itoa(t.Seq),
			t.Agency.Code,
			t.Period.StartLabel(),
			t.Period.EndLabel(),
			t.Filename,
			a.Paths.GetDownloadPath(t.Filename),
			t.URL,
		}
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(a.Paths.CombinedDir, path)
	}
	w := exporter.NewCSVWriter(a.Paths, a.Logger)
	err := w.WriteCSV(path, exporter.WriteOptions{
		Headers:   []string{"Seq", "Agency", "From", "To", "Filename", "Path", "URL"},
		Records:   records,
		BOMPrefix: a.Config.Export.BOM,
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// Shutdown writes the metrics file and flushes telemetry. Safe to call once
// per Application.
func (a *Application) Shutdown(ctx context.Context) error {
	var firstErr error
	if a.OTelProviders != nil {
		if err := a.OTelProviders.WriteMetricsFile(a.Paths.MetricsFile); err != nil {
			a.Logger.ErrorContext(ctx, "Error writing metrics file", slog.String("error", err.Error()))
			firstErr = err
		}
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (a *Application) execute(ctx context.Context, steps ...operations.Step) (*operations.RunState, error) {
	runID := infrastructure.NewRunID()
	ctx = infrastructure.WithRunID(ctx, runID)

	pipeline := operations.NewPipeline(a.Logger, a.OTelProviders.Metrics, steps...).
		WithTracer(a.OTelProviders.Tracer)
	state := operations.NewRunState(runID, a.clock())
	err := pipeline.Run(ctx, state)
	return state, err
}

func (a *Application) stageOptions() *operations.StageOptions {
	return &operations.StageOptions{
		Console: a.console,
		Logger:  a.Logger,
		Clock:   a.clock,
	}
}

func (a *Application) prepareStep() operations.Step {
	return operations.NewPrepareStep(a.Paths, a.Config.Export.FilePrefix, a.validator, a.stageOptions())
}

func (a *Application) planStep() operations.Step {
	return operations.NewPlanStep(a.Plan, a.stageOptions())
}

func (a *Application) downloadStep() operations.Step {
	opts := fetch.OptionsFromConfig(a.Config.Fetch)
	opts.Client = a.httpClient
	opts.Logger = infrastructure.WithComponent(a.Logger, "fetch")
	opts.Recorder = a.OTelProviders.Metrics
	opts.Tracer = a.OTelProviders.Tracer

	store := files.NewManager(a.Paths.DownloadDir, a.Logger)
	return operations.NewDownloadStep(store, opts, a.stageOptions())
}

func (a *Application) combineStep() operations.Step {
	logger := infrastructure.WithComponent(a.Logger, "combiner")
	c := combiner.New(combiner.Options{
		Reader:    spreadsheet.NewReader(a.Config.Export.HeaderRows, logger),
		Discovery: files.NewDiscovery(a.Paths.BaseDir),
		Writer:    exporter.NewCSVWriter(a.Paths, logger),
		Marker:    a.Config.Export.FilePrefix,
		BOM:       a.Config.Export.BOM,
		Logger:    logger,
	})
	return operations.NewCombineStep(c, a.Paths, a.validator, a.OTelProviders.Metrics, a.stageOptions())
}
