package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "etenderexport/internal/errors"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "ETENDER"

// Config represents the complete application configuration
type Config struct {
	Logging     LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths       PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Fetch       FetchConfig     `yaml:"fetch" envconfig:"FETCH"`
	Export      ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Telemetry   TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	PauseOnExit bool            `yaml:"pause_on_exit" envconfig:"PAUSE_ON_EXIT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system locations. Relative entries are resolved
// against BaseDir, which defaults to the working directory.
type PathsConfig struct {
	BaseDir     string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DownloadDir string `yaml:"download_dir" envconfig:"DOWNLOAD_DIR" validate:"required"`
	CombinedDir string `yaml:"combined_dir" envconfig:"COMBINED_DIR" validate:"required"`
	LogsDir     string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// FetchConfig controls how downloads are issued
type FetchConfig struct {
	Concurrency       int           `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"min=1,max=32"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" validate:"gt=0"`
	Burst             int           `yaml:"burst" envconfig:"BURST" validate:"min=1"`
	HTTPTimeout       time.Duration `yaml:"http_timeout" envconfig:"HTTP_TIMEOUT" validate:"gt=0"`
	UserAgent         string        `yaml:"user_agent" envconfig:"USER_AGENT" validate:"required"`
}

// ExportConfig controls task generation and the combined file
type ExportConfig struct {
	StartYear   int    `yaml:"start_year" envconfig:"START_YEAR" validate:"min=1900,max=9999"`
	HeaderRows  int    `yaml:"header_rows" envconfig:"HEADER_ROWS" validate:"min=0"`
	FilePrefix  string `yaml:"file_prefix" envconfig:"FILE_PREFIX" validate:"required"`
	FileExt     string `yaml:"file_ext" envconfig:"FILE_EXT" validate:"required"`
	URLTemplate string `yaml:"url_template" envconfig:"URL_TEMPLATE" validate:"required"`
	BOM         bool   `yaml:"bom" envconfig:"BOM"`

	// Agencies and periods are not read from the environment.
	Agencies []Agency       `yaml:"agencies" ignored:"true" validate:"min=1,dive"`
	Periods  []PeriodBounds `yaml:"periods" ignored:"true" validate:"len=2,dive"`
}

// TelemetryConfig selects trace and metric outputs
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	// MetricsFile receives a Prometheus textfile at the end of a run. Empty disables it.
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from compiled defaults, an optional YAML
// file and ETENDER_* environment variables, in increasing precedence.
// An empty configPath falls back to ETENDER_CONFIG_FILE and then to the
// well-known locations.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = getConfigFilePath()
	}
	if configPath != "" {
		if err := loadFromFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Env vars only override fields they are set for
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg. Keys missing from the file keep
// their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and the URL template placeholders
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}

	for _, placeholder := range []string{PlaceholderAgency, PlaceholderStart, PlaceholderEnd} {
		if !strings.Contains(c.Export.URLTemplate, placeholder) {
			return apperrors.NewConfigError("export.url_template", fmt.Errorf("missing placeholder %s", placeholder))
		}
	}

	seen := make(map[string]bool, len(c.Export.Agencies))
	for _, a := range c.Export.Agencies {
		if seen[a.Code] {
			return apperrors.NewConfigError("export.agencies", fmt.Errorf("duplicate agency code %s", a.Code))
		}
		seen[a.Code] = true
	}

	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}

	return nil
}

// getConfigFilePath returns the path to the config file, or "" if none exists
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	locations := []string{
		"etender.yaml",
		"configs/etender.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns the compiled-in configuration
func Default() *Config {
	agencies := make([]Agency, len(Agencies))
	copy(agencies, Agencies)
	periods := make([]PeriodBounds, len(PeriodTable))
	copy(periods, PeriodTable[:])

	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "file",
			FilePath: "",
		},
		Paths: PathsConfig{
			DownloadDir: DefaultDownloadDir,
			CombinedDir: DefaultCombinedDir,
			LogsDir:     DefaultLogsDir,
		},
		Fetch: FetchConfig{
			Concurrency:       DefaultConcurrency,
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultBurst,
			HTTPTimeout:       DefaultHTTPTimeout,
			UserAgent:         DefaultUserAgent,
		},
		Export: ExportConfig{
			StartYear:   DefaultStartYear,
			HeaderRows:  DefaultHeaderRows,
			FilePrefix:  DefaultFilePrefix,
			FileExt:     DefaultFileExtension,
			URLTemplate: PortalURLTemplate,
			Agencies:    agencies,
			Periods:     periods,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
			MetricsFile:   DefaultMetricsFile,
		},
		PauseOnExit: true,
	}
}
