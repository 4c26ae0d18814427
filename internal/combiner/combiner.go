// Package combiner merges the downloaded tender spreadsheets into one dated
// CSV export.
package combiner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"etenderexport/internal/config"
	apperrors "etenderexport/internal/errors"
	"etenderexport/internal/exporter"
	"etenderexport/internal/files"
	"etenderexport/internal/spreadsheet"
)

// SheetReader parses one downloaded file.
type SheetReader interface {
	ReadFile(path string) (*spreadsheet.Sheet, error)
}

// Batch is the tagged content of a single downloaded file.
type Batch struct {
	Source  string
	Columns []string
	Rows    [][]string
}

// Table is the combined result. Every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
	Sources []string
}

// Options configures a Combiner
type Options struct {
	Reader    SheetReader
	Discovery *files.Discovery
	Writer    *exporter.CSVWriter
	Marker    string
	BOM       bool
	Logger    *slog.Logger
}

// Combiner reads every downloaded file and writes the union of their rows
type Combiner struct {
	reader    SheetReader
	discovery *files.Discovery
	writer    *exporter.CSVWriter
	marker    string
	bom       bool
	logger    *slog.Logger
}

// New creates a Combiner. A nil Discovery resolves directories as given and
// an empty Marker matches the default download prefix.
func New(opts Options) *Combiner {
	c := &Combiner{
		reader:    opts.Reader,
		discovery: opts.Discovery,
		writer:    opts.Writer,
		marker:    opts.Marker,
		bom:       opts.BOM,
		logger:    opts.Logger,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.discovery == nil {
		c.discovery = files.NewDiscovery("")
	}
	if c.marker == "" {
		c.marker = config.DefaultFilePrefix
	}
	return c
}

// Combine reads every file in dir whose name contains the marker, in name
// order, tags each row with its file name and exportDateTime, and unions the
// columns. The first unreadable file aborts the combine.
func (c *Combiner) Combine(ctx context.Context, dir string, exportDateTime string) (*Table, error) {
	found, err := c.discovery.FindByMarker(dir, c.marker)
	if err != nil {
		return nil, apperrors.FileSystemError("list "+dir, err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w in %s", apperrors.ErrNoFilesToCombine, dir)
	}

	c.logger.InfoContext(ctx, "Combining downloaded files",
		slog.String("directory", dir),
		slog.Int("files", len(found)),
		slog.Int64("total_bytes", files.TotalSize(found)))

	batches := make([]Batch, 0, len(found))
	for _, f := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sheet, err := c.reader.ReadFile(f.Path)
		if err != nil {
			c.logger.ErrorContext(ctx, "Unreadable spreadsheet",
				slog.String("file", f.Name),
				slog.String("error", err.Error()))
			return nil, err
		}

		batches = append(batches, Tag(f.Name, sheet, exportDateTime))
		c.logger.DebugContext(ctx, "File read",
			slog.String("file", f.Name),
			slog.Int("rows", len(sheet.Rows)))
	}

	table := Union(batches)
	c.logger.InfoContext(ctx, "Files combined",
		slog.Int("files", len(table.Sources)),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", len(table.Rows)))
	return table, nil
}

// Tag appends the Source Name and ExportDateTime columns to a sheet. A
// column already carrying one of those names is overwritten in place.
func Tag(source string, sheet *spreadsheet.Sheet, exportDateTime string) Batch {
	columns := append([]string(nil), sheet.Header...)
	sourceIdx := indexOrAppend(&columns, config.SourceNameColumn)
	stampIdx := indexOrAppend(&columns, config.ExportDateTimeColumn)

	rows := make([][]string, len(sheet.Rows))
	for i, row := range sheet.Rows {
		out := make([]string, len(columns))
		copy(out, row)
		out[sourceIdx] = source
		out[stampIdx] = exportDateTime
		rows[i] = out
	}
	return Batch{Source: source, Columns: columns, Rows: rows}
}

func indexOrAppend(columns *[]string, name string) int {
	for i, c := range *columns {
		if c == name {
			return i
		}
	}
	*columns = append(*columns, name)
	return len(*columns) - 1
}

// Union concatenates batches in order. Columns keep the order of their first
// appearance, so the first batch fixes the leading columns; cells for columns
// a batch lacks are left empty.
func Union(batches []Batch) *Table {
	table := &Table{}
	position := make(map[string]int)

	for _, b := range batches {
		for _, col := range b.Columns {
			if _, ok := position[col]; !ok {
				position[col] = len(table.Columns)
				table.Columns = append(table.Columns, col)
			}
		}
	}

	for _, b := range batches {
		table.Sources = append(table.Sources, b.Source)
		for _, row := range b.Rows {
			out := make([]string, len(table.Columns))
			for i, col := range b.Columns {
				if i < len(row) {
					out[position[col]] = row[i]
				}
			}
			table.Rows = append(table.Rows, out)
		}
	}
	return table
}

// WriteCombined writes table to <CombinedDir>/<YYYYMMDD>.csv for the date of
// runDate, replacing an export written earlier the same day. It returns the
// path.
func (c *Combiner) WriteCombined(table *Table, paths *config.Paths, runDate time.Time) (string, error) {
	path := paths.GetCombinedPath(runDate)
	replaced := config.FileExists(path)

	stream, err := c.writer.CreateStreamWriter(path, table.Columns, c.bom)
	if err != nil {
		return "", apperrors.FileSystemError("create "+path, err)
	}

	for _, row := range table.Rows {
		if err := stream.WriteRecord(row); err != nil {
			stream.Abort()
			return "", apperrors.FileSystemError("write "+path, err)
		}
	}

	if err := stream.Close(); err != nil {
		return "", apperrors.FileSystemError("close "+path, err)
	}

	c.logger.Info("Combined file written",
		slog.String("path", path),
		slog.Int("rows", stream.Rows()),
		slog.Int("columns", len(table.Columns)),
		slog.Bool("replaced", replaced))
	return path, nil
}
