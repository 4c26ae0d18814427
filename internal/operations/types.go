package operations

import (
	"io"
	"log/slog"
	"time"
)

// Step identifiers
const (
	StepIDPrepare  = "prepare"
	StepIDPlan     = "plan"
	StepIDDownload = "download"
	StepIDCombine  = "combine"
)

// Step names
const (
	StepNamePrepare  = "Folder Setup"
	StepNamePlan     = "Download Planning"
	StepNameDownload = "Download"
	StepNameCombine  = "Combine"
)

// Metadata keys set on step states
const (
	MetadataKeyExisting     = "existing_files"
	MetadataKeyTasks        = "tasks"
	MetadataKeySucceeded    = "succeeded"
	MetadataKeyFailed       = "failed"
	MetadataKeyBytes        = "bytes"
	MetadataKeyFiles        = "files"
	MetadataKeyRows         = "rows"
	MetadataKeyCombinedPath = "combined_path"
)

// progressReportPercent controls how often download progress is logged
const progressReportPercent = 10

// StageOptions carries the collaborators shared by every step
type StageOptions struct {
	// Console receives the short progress announcements shown to the user.
	// Nil discards them.
	Console io.Writer
	Logger  *slog.Logger
	// Clock defaults to time.Now
	Clock func() time.Time
}

func (o *StageOptions) withDefaults() StageOptions {
	out := StageOptions{}
	if o != nil {
		out = *o
	}
	if out.Console == nil {
		out.Console = io.Discard
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.Clock == nil {
		out.Clock = time.Now
	}
	return out
}
