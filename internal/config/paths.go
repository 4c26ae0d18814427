package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Paths contains all the application paths.
// This is the single source of truth for file locations used by a run.
type Paths struct {
	BaseDir     string
	DownloadDir string
	CombinedDir string
	LogsDir     string

	LogFile     string
	MetricsFile string
}

// GetPaths resolves the configured locations. Relative entries are joined to
// BaseDir; an empty BaseDir means the current working directory.
func GetPaths(cfg *Config) (*Paths, error) {
	if cfg == nil {
		cfg = Default()
	}

	base := cfg.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	logsDir := resolve(base, cfg.Paths.LogsDir)

	logFile := cfg.Logging.FilePath
	if logFile == "" {
		logFile = filepath.Join(logsDir, DefaultLogFile)
	} else {
		logFile = resolve(base, logFile)
	}

	metricsFile := ""
	if cfg.Telemetry.MetricsFile != "" {
		metricsFile = resolve(logsDir, cfg.Telemetry.MetricsFile)
	}

	return &Paths{
		BaseDir:     base,
		DownloadDir: resolve(base, cfg.Paths.DownloadDir),
		CombinedDir: resolve(base, cfg.Paths.CombinedDir),
		LogsDir:     logsDir,
		LogFile:     logFile,
		MetricsFile: metricsFile,
	}, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// EnsureDirectories creates the download, combined and logs directories.
// Creation is synchronous and a directory that already exists is not an error.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DownloadDir,
		p.CombinedDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}

		logger.Debug("Ensured directory exists",
			slog.String("directory", dir))
	}

	return nil
}

// GetDownloadPath returns the path for a downloaded file
func (p *Paths) GetDownloadPath(filename string) string {
	return filepath.Join(p.DownloadDir, filename)
}

// GetCombinedPath returns the combined export path for the given run date
func (p *Paths) GetCombinedPath(date time.Time) string {
	return filepath.Join(p.CombinedDir, date.Format(CombinedFileLayout)+CombinedFileExt)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved locations for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("downloads", p.DownloadDir),
			slog.String("combined", p.CombinedDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("log", p.LogFile),
			slog.String("metrics", p.MetricsFile),
		))
}
