// Package config provides centralized configuration management for the
// eTender export tool. It loads settings from several sources, validates them
// and resolves every file system location a run touches.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Compiled defaults (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ETENDER_<SECTION>_<FIELD>:
//
//	ETENDER_LOGGING_LEVEL=debug
//	ETENDER_FETCH_CONCURRENCY=8
//	ETENDER_PATHS_DOWNLOAD_DIR=/data/etender
//	ETENDER_EXPORT_START_YEAR=2010
//	ETENDER_PAUSE_ON_EXIT=false
//
// The YAML file is located through ETENDER_CONFIG_FILE, or found as
// etender.yaml or configs/etender.yaml in the working directory.
//
// # Agencies and Periods
//
// The agency table, the portal URL template and the half-year period bounds
// are compiled in (see constants.go). A YAML file may replace the agency and
// period tables; environment variables never do.
//
// # Path Management
//
//	paths, err := config.GetPaths(cfg)
//	if err := paths.EnsureDirectories(); err != nil { ... }
//	out := paths.GetCombinedPath(time.Now())
package config
