package operations

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"etenderexport/internal/combiner"
	"etenderexport/internal/config"
	apperrors "etenderexport/internal/errors"
	"etenderexport/internal/fetch"
	"etenderexport/internal/files"
	"etenderexport/internal/tasks"
	"etenderexport/internal/validation"
)

// RowRecorder counts rows written to the combined export
type RowRecorder interface {
	RecordCombinedRows(ctx context.Context, rows int)
}

// PrepareStep creates the download and combined folders
type PrepareStep struct {
	BaseStep
	paths     *config.Paths
	marker    string
	validator *validation.FileValidator
	opts      StageOptions
}

// NewPrepareStep creates the folder setup step. marker identifies export
// files already sitting in the download folder.
func NewPrepareStep(paths *config.Paths, marker string, validator *validation.FileValidator, opts *StageOptions) *PrepareStep {
	o := opts.withDefaults()
	if validator == nil {
		validator = validation.NewFileValidator(o.Logger)
	}
	return &PrepareStep{
		BaseStep:  NewBaseStep(StepIDPrepare, StepNamePrepare),
		paths:     paths,
		marker:    marker,
		validator: validator,
		opts:      o,
	}
}

// Execute creates any missing folder and checks both are writable. Exports
// left by an earlier run are counted and logged.
func (s *PrepareStep) Execute(ctx context.Context, state *RunState) error {
	for _, dir := range []string{s.paths.DownloadDir, s.paths.CombinedDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			fmt.Fprintf(s.opts.Console, "Creating folder %s...\n\n", dir)
		}
	}

	if err := s.paths.EnsureDirectories(); err != nil {
		return apperrors.FileSystemError("create folders", err)
	}

	for _, dir := range []string{s.paths.DownloadDir, s.paths.CombinedDir} {
		if err := s.validator.RequireWritable(dir); err != nil {
			return err
		}
	}

	existing, err := s.validator.CountExports(s.paths.DownloadDir, s.marker)
	if err != nil {
		return err
	}
	state.ensureStep(s.ID(), s.Name()).SetMetadata(MetadataKeyExisting, existing)
	if existing > 0 {
		s.opts.Logger.InfoContext(ctx, "Download folder already holds exports",
			slog.String("directory", s.paths.DownloadDir),
			slog.Int("files", existing))
	}

	s.opts.Logger.InfoContext(ctx, "Folders ready",
		slog.String("download_dir", s.paths.DownloadDir),
		slog.String("combined_dir", s.paths.CombinedDir))
	return nil
}

// PlanStep enumerates the download tasks for the run date
type PlanStep struct {
	BaseStep
	plan tasks.Plan
	opts StageOptions
}

// NewPlanStep creates the planning step
func NewPlanStep(plan tasks.Plan, opts *StageOptions) *PlanStep {
	return &PlanStep{
		BaseStep: NewBaseStep(StepIDPlan, StepNamePlan),
		plan:     plan,
		opts:     opts.withDefaults(),
	}
}

// Execute fills state.Tasks
func (s *PlanStep) Execute(ctx context.Context, state *RunState) error {
	if err := s.plan.Validate(); err != nil {
		return NewValidationError(s.ID(), err.Error())
	}

	state.Tasks = tasks.Generate(s.plan, state.Now)

	perAgency := make(map[string]int, len(s.plan.Agencies))
	for _, t := range state.Tasks {
		perAgency[t.Agency.Code]++
	}
	for _, agency := range s.plan.Agencies {
		s.opts.Logger.DebugContext(ctx, "Agency planned",
			slog.String("agency", agency.Code),
			slog.Int("tasks", perAgency[agency.Code]))
	}

	state.ensureStep(s.ID(), s.Name()).SetMetadata(MetadataKeyTasks, len(state.Tasks))
	s.opts.Logger.InfoContext(ctx, "Download tasks planned",
		slog.Int("tasks", len(state.Tasks)),
		slog.Int("agencies", len(s.plan.Agencies)),
		slog.Time("planned_at", state.Now))
	return nil
}

// DownloadStep fetches every planned task and waits for all of them
type DownloadStep struct {
	BaseStep
	store     *files.Manager
	fetchOpts fetch.Options
	opts      StageOptions
}

// NewDownloadStep creates the download step writing into store
func NewDownloadStep(store *files.Manager, fetchOpts fetch.Options, opts *StageOptions) *DownloadStep {
	o := opts.withDefaults()
	if fetchOpts.Logger == nil {
		fetchOpts.Logger = o.Logger
	}
	return &DownloadStep{
		BaseStep:  NewBaseStep(StepIDDownload, StepNameDownload),
		store:     store,
		fetchOpts: fetchOpts,
		opts:      o,
	}
}

// Execute downloads state.Tasks. Failed downloads are kept in the report and
// do not fail the step; only cancellation does. ExportDateTime is stamped once
// every download has finished.
func (s *DownloadStep) Execute(ctx context.Context, state *RunState) error {
	stepState := state.ensureStep(s.ID(), s.Name())
	fmt.Fprint(s.opts.Console, "Downloading eTender files...\n\n")

	tracker := NewProgressTracker(len(state.Tasks), s.opts.Clock)
	fetchOpts := s.fetchOpts
	next := fetchOpts.OnResult
	fetchOpts.OnResult = func(res fetch.Result) {
		n := tracker.Record(res)
		if tracker.Milestone(n, progressReportPercent) {
			p := tracker.Snapshot()
			stepState.UpdateProgress(p.Percent, fmt.Sprintf("%d of %d downloads finished", p.Done, p.Total))
			s.opts.Logger.InfoContext(ctx, "Download progress",
				slog.Int("finished", p.Done),
				slog.Int("total", p.Total),
				slog.Int("failed", p.Failed),
				slog.Int64("bytes", p.Bytes),
				slog.Float64("percent", p.Percent),
				slog.Duration("eta", tracker.ETA()))
		}
		if next != nil {
			next(res)
		}
	}

	report, err := fetch.NewDispatcher(s.store, fetchOpts).Dispatch(ctx, state.Tasks)
	state.Downloads = report
	if err != nil {
		return err
	}

	state.ExportDateTime = s.opts.Clock().Format(config.ExportDateTimeLayout)

	stepState.SetMetadata(MetadataKeySucceeded, report.Succeeded)
	stepState.SetMetadata(MetadataKeyFailed, report.Failed)
	stepState.SetMetadata(MetadataKeyBytes, report.Bytes)

	if report.Failed > 0 {
		s.opts.Logger.WarnContext(ctx, "Some downloads failed",
			slog.Int("failed", report.Failed),
			slog.Any("by_status", report.ByStatus()))
	}

	fmt.Fprint(s.opts.Console, "Downloading eTender files complete\n\n")
	return nil
}

// CombineStep merges the downloaded files into the dated CSV
type CombineStep struct {
	BaseStep
	combiner  *combiner.Combiner
	paths     *config.Paths
	validator *validation.FileValidator
	recorder  RowRecorder
	opts      StageOptions
}

// NewCombineStep creates the combine step. A nil recorder is allowed.
func NewCombineStep(c *combiner.Combiner, paths *config.Paths, validator *validation.FileValidator, recorder RowRecorder, opts *StageOptions) *CombineStep {
	o := opts.withDefaults()
	if validator == nil {
		validator = validation.NewFileValidator(o.Logger)
	}
	return &CombineStep{
		BaseStep:  NewBaseStep(StepIDCombine, StepNameCombine),
		combiner:  c,
		paths:     paths,
		validator: validator,
		recorder:  recorder,
		opts:      o,
	}
}

// Execute combines the download folder into <CombinedDir>/<YYYYMMDD>.csv,
// dated by the run's planning instant. When no download step ran,
// ExportDateTime is stamped now.
func (s *CombineStep) Execute(ctx context.Context, state *RunState) error {
	stepState := state.ensureStep(s.ID(), s.Name())
	fmt.Fprint(s.opts.Console, "Combining eTender files...\n\n")

	if err := s.validator.RequireDirectory(s.paths.DownloadDir); err != nil {
		return err
	}

	if state.ExportDateTime == "" {
		state.ExportDateTime = s.opts.Clock().Format(config.ExportDateTimeLayout)
	}

	table, err := s.combiner.Combine(ctx, s.paths.DownloadDir, state.ExportDateTime)
	if err != nil {
		return err
	}
	state.Table = table

	path, err := s.combiner.WriteCombined(table, s.paths, state.Now)
	if err != nil {
		return err
	}
	state.CombinedPath = path

	if s.recorder != nil {
		s.recorder.RecordCombinedRows(ctx, len(table.Rows))
	}

	stepState.SetMetadata(MetadataKeyFiles, len(table.Sources))
	stepState.SetMetadata(MetadataKeyRows, len(table.Rows))
	stepState.SetMetadata(MetadataKeyCombinedPath, path)

	fmt.Fprint(s.opts.Console, "Combining eTender files complete\n\n")
	return nil
}

// Compile-time interface checks
var (
	_ Step = (*PrepareStep)(nil)
	_ Step = (*PlanStep)(nil)
	_ Step = (*DownloadStep)(nil)
	_ Step = (*CombineStep)(nil)
)
