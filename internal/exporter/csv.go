package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"etenderexport/internal/config"
	"etenderexport/internal/files"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes CSV files that appear under their final name only once
// complete. An existing file of the same name is replaced.
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a writer. Relative file paths are written under
// paths.CombinedDir.
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger}
}

// WriteOptions is the content of a whole file
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM so Excel picks the right encoding
}

// WriteCSV writes a complete file in one call
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	stream, err := w.CreateStreamWriter(filePath, options.Headers, options.BOMPrefix)
	if err != nil {
		return err
	}

	for i, record := range options.Records {
		if err := stream.WriteRecord(record); err != nil {
			stream.Abort()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return stream.Close()
}

// StreamWriter writes records one at a time. Close publishes the file,
// Abort throws it away.
type StreamWriter struct {
	pending *files.PendingFile
	writer  *csv.Writer
	rows    int
	logger  *slog.Logger
}

// CreateStreamWriter starts a file at filePath and writes the header row.
// The caller must Close or Abort the returned writer.
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string, bom bool) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	pending, err := files.NewManager(dir, w.logger).Create(filepath.Base(fullPath))
	if err != nil {
		return nil, err
	}

	if bom {
		if _, err := pending.Write(utf8BOM); err != nil {
			pending.Discard()
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(pending)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			pending.Discard()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	w.logger.Debug("CSV file started",
		slog.String("path", fullPath),
		slog.Int("columns", len(headers)))

	return &StreamWriter{pending: pending, writer: writer, logger: w.logger}, nil
}

// WriteRecord writes a single record
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.rows++
	return nil
}

// Rows returns the number of records written so far, excluding the header
func (s *StreamWriter) Rows() int {
	return s.rows
}

// Path returns where Close places the file
func (s *StreamWriter) Path() string {
	return s.pending.FinalPath()
}

// Close flushes the records and moves the file into place
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.pending.Discard()
		return err
	}
	if err := s.pending.Commit(); err != nil {
		return err
	}

	s.logger.Info("CSV file written",
		slog.String("path", s.Path()),
		slog.Int("rows", s.rows))
	return nil
}

// Abort removes the partial file. A previously published file of the same
// name is left untouched.
func (s *StreamWriter) Abort() {
	s.pending.Discard()
}

// resolvePath places relative paths in the combined output directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return filepath.Join(w.paths.CombinedDir, filePath)
}
