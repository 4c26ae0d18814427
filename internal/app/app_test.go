package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etenderexport/internal/combiner"
	"etenderexport/internal/config"
	apperrors "etenderexport/internal/errors"
	"etenderexport/internal/fetch"
	"etenderexport/internal/infrastructure"
	"etenderexport/internal/operations"
	"etenderexport/internal/tasks"
)

var testNow = time.Date(2021, time.March, 15, 9, 30, 0, 0, time.UTC)

const exportTable = `<html><body><table>
<tr><td>Contract Notice Export</td></tr>
<tr><td>Generated by the portal</td></tr>
<tr><th>CN ID</th><th>Agency</th></tr>
<tr><td>CN200</td><td>Education</td></tr>
</table></body></html>`

// setupTestEnvironment writes a config file pointing at a temporary base
// directory and a fake portal, and resets the global logger afterwards.
func setupTestEnvironment(t *testing.T, srv *httptest.Server) (configPath, baseDir string) {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	for _, key := range []string{"ETENDER_CONFIG_FILE", "ETENDER_LOGGING_LEVEL", "ETENDER_PATHS_BASE_DIR"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	baseDir = t.TempDir()
	template := "https://portal.test/?agencyUUID=AGENCY_UUID&publishFrom=PUB_START&publishTo=PUB_END"
	if srv != nil {
		template = srv.URL + "/?agencyUUID=AGENCY_UUID&publishFrom=PUB_START&publishTo=PUB_END"
	}

	yaml := fmt.Sprintf(`logging:
  level: debug
  output: file
paths:
  base_dir: %q
fetch:
  concurrency: 2
  requests_per_second: 100
  burst: 10
export:
  start_year: 2020
  url_template: %q
  agencies:
    - id: uuid-doe
      code: DOE
telemetry:
  trace_exporter: none
  metrics_file: etender.prom
pause_on_exit: false
`, baseDir, template)

	configPath = filepath.Join(baseDir, "etender.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0644))
	return configPath, baseDir
}

// portal answers every export request except January-June 2020
func portal(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("publishFrom") == "1-Jan-2020" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(exportTable))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestApplication(t *testing.T, configPath string, console *bytes.Buffer) *Application {
	t.Helper()
	application, err := NewApplication(Options{
		ConfigPath: configPath,
		Console:    console,
		Clock:      func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return application
}

func TestNewApplication(t *testing.T) {
	configPath, baseDir := setupTestEnvironment(t, nil)

	application := newTestApplication(t, configPath, &bytes.Buffer{})
	defer application.Shutdown(context.Background())

	assert.Equal(t, filepath.Join(baseDir, config.DefaultDownloadDir), application.Paths.DownloadDir)
	assert.Equal(t, filepath.Join(baseDir, config.DefaultCombinedDir), application.Paths.CombinedDir)
	assert.Equal(t, filepath.Join(baseDir, "logs", "etender.log"), application.Config.Logging.FilePath)
	assert.Equal(t, []config.Agency{{ID: "uuid-doe", Code: "DOE"}}, application.Plan.Agencies)
	assert.Equal(t, config.PeriodTable, application.Plan.Periods)
	assert.False(t, application.Config.PauseOnExit)
	assert.NotNil(t, application.OTelProviders)
	assert.FileExists(t, application.Paths.LogFile)
}

func TestNewApplicationLogLevelOverride(t *testing.T) {
	configPath, _ := setupTestEnvironment(t, nil)

	application, err := NewApplication(Options{ConfigPath: configPath, LogLevel: "warning", Console: &bytes.Buffer{}})
	require.NoError(t, err)
	defer application.Shutdown(context.Background())
	assert.Equal(t, "warn", application.Config.Logging.Level)

	infrastructure.ResetLoggerForTesting()
	_, err = NewApplication(Options{ConfigPath: configPath, LogLevel: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNewApplicationMissingConfigFile(t *testing.T) {
	setupTestEnvironment(t, nil)
	_, err := NewApplication(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestExport(t *testing.T) {
	srv := portal(t)
	configPath, _ := setupTestEnvironment(t, srv)
	var console bytes.Buffer

	application := newTestApplication(t, configPath, &console)
	state, err := application.Export(context.Background())
	require.NoError(t, err)
	require.NoError(t, application.Shutdown(context.Background()))

	assert.Equal(t, operations.RunStatusCompleted, state.GetStatus())
	require.Len(t, state.Tasks, 3)
	assert.Equal(t, 2, state.Downloads.Succeeded)
	assert.Equal(t, 1, state.Downloads.Failed)

	combined := filepath.Join(application.Paths.CombinedDir, "20210315.csv")
	assert.Equal(t, combined, state.CombinedPath)

	f, err := os.Open(combined)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"CN ID", "Agency", "Source Name", "ExportDateTime"}, records[0])
	assert.Equal(t, "15-Mar-2021 09:30 AM", records[1][3])

	metrics, err := os.ReadFile(application.Paths.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "etender_downloads_total")
	assert.Contains(t, string(metrics), "etender_combined_rows_total")
	assert.Contains(t, string(metrics), `step="combine"`)

	logData, err := os.ReadFile(application.Paths.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(logData), state.ID, "log lines carry the run id")

	PrintSummary(&console, state)
	out := console.String()
	assert.Contains(t, out, "Downloads: 2 of 3 succeeded")
	assert.Contains(t, out, "eTender_DOE_30-Jun-2020_1-Jan-2020_3.xls (http_error)")
	assert.Contains(t, out, "Combined 2 files, 2 rows into "+combined)
}

func TestDownloadOnly(t *testing.T) {
	srv := portal(t)
	configPath, _ := setupTestEnvironment(t, srv)

	application := newTestApplication(t, configPath, &bytes.Buffer{})
	defer application.Shutdown(context.Background())

	state, err := application.Download(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.CombinedPath)
	assert.NotEmpty(t, state.ExportDateTime)

	entries, err := os.ReadDir(application.Paths.DownloadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = os.Stat(filepath.Join(application.Paths.CombinedDir, "20210315.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestCombineOnly(t *testing.T) {
	configPath, _ := setupTestEnvironment(t, nil)

	application := newTestApplication(t, configPath, &bytes.Buffer{})
	defer application.Shutdown(context.Background())

	require.NoError(t, os.MkdirAll(application.Paths.DownloadDir, 0755))
	for _, name := range []string{"eTender_DOE_b_2.xls", "eTender_DOE_a_1.xls", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(application.Paths.DownloadDir, name), []byte(exportTable), 0644))
	}

	state, err := application.Combine(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state.Table)
	assert.Equal(t, []string{"eTender_DOE_a_1.xls", "eTender_DOE_b_2.xls"}, state.Table.Sources)
	assert.Equal(t, "15-Mar-2021 09:30 AM", state.ExportDateTime)
}

func TestCombineOnlyEmptyFolder(t *testing.T) {
	configPath, _ := setupTestEnvironment(t, nil)

	application := newTestApplication(t, configPath, &bytes.Buffer{})
	defer application.Shutdown(context.Background())

	state, err := application.Combine(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoFilesToCombine)
	assert.Equal(t, operations.RunStatusFailed, state.GetStatus())
}

func TestTasksAndWriteTaskList(t *testing.T) {
	configPath, _ := setupTestEnvironment(t, nil)

	application := newTestApplication(t, configPath, &bytes.Buffer{})
	defer application.Shutdown(context.Background())

	list := application.Tasks()
	require.Len(t, list, 3)
	assert.Equal(t, "eTender_DOE_31-Dec-2021_1-Jul-2021_1.xls", list[0].Filename)

	path, err := application.WriteTaskList("plan.csv", list)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(application.Paths.CombinedDir, "plan.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Seq,Agency,From,To,Filename,Path,URL", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,DOE,1-Jul-2021,31-Dec-2021,eTender_DOE_31-Dec-2021_1-Jul-2021_1.xls,"))
	assert.Contains(t, lines[1], filepath.Join(application.Paths.DownloadDir, "eTender_DOE_31-Dec-2021_1-Jul-2021_1.xls"))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	out := buf.String()

	assert.Contains(t, out, "eTender Export Tool v"+config.AppVersion)
	assert.Contains(t, out, "Downloads are saved to folder ETENDER_DOWNLOAD")
	assert.Contains(t, out, "v1.0 -  [2020-12-18] New release")

	buf.Reset()
	PrintClosing(&buf, true)
	assert.Contains(t, buf.String(), "Press Enter to exit.")
	buf.Reset()
	PrintClosing(&buf, false)
	assert.NotContains(t, buf.String(), "Press Enter")
}

func TestPrintSummaryFailedRun(t *testing.T) {
	state := operations.NewRunState("run", testNow)
	state.Tasks = make([]tasks.DownloadTask, 2)
	state.Downloads = &fetch.Report{Succeeded: 2, Bytes: 10}
	state.Table = &combiner.Table{}
	state.Fail(fmt.Errorf("combine: %w", apperrors.ErrNoFilesToCombine))

	var buf bytes.Buffer
	PrintSummary(&buf, state)
	out := buf.String()
	assert.Contains(t, out, "Downloads: 2 of 2 succeeded (10 bytes)")
	assert.NotContains(t, out, "Failed downloads")
	assert.NotContains(t, out, "Combined")
	assert.Contains(t, out, "Run failed:")
	assert.NotContains(t, out, "trace")

	buf.Reset()
	state.TraceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	PrintSummary(&buf, state)
	assert.Contains(t, buf.String(), "Run ID run, trace 4bf92f3577b34da6a3ce929d0e0e4736")
}
