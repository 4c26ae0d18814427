// Package spreadsheet reads the tender exports saved by the downloader into
// plain string tables.
//
// The portal labels its export "XLS" but the body may be a BIFF workbook, an
// Office Open XML workbook or an HTML table. The format is detected from the
// file content, not its extension.
package spreadsheet

import (
	"bytes"
	"log/slog"
	"os"
	"strconv"
	"strings"

	apperrors "etenderexport/internal/errors"
)

// Format is the detected encoding of a downloaded file.
type Format string

const (
	FormatXLSX    Format = "xlsx"
	FormatHTML    Format = "html"
	FormatBIFF    Format = "biff"
	FormatUnknown Format = "unknown"
)

var (
	zipMagic  = []byte("PK\x03\x04")
	biffMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Sheet is a parsed table. Every row has exactly len(Header) cells.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// Reader parses downloaded spreadsheets, skipping a fixed number of banner
// rows before the header row.
type Reader struct {
	headerRows int
	logger     *slog.Logger
}

// NewReader creates a reader that skips headerRows banner rows.
func NewReader(headerRows int, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	if headerRows < 0 {
		headerRows = 0
	}
	return &Reader{headerRows: headerRows, logger: logger}
}

// ReadFile parses the file at path. Any failure is returned as a
// *errors.ReadError naming the file.
func (r *Reader) ReadFile(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewReadError(path, err)
	}

	sheet, format, err := r.Parse(data)
	if err != nil {
		return nil, apperrors.NewReadError(path, err)
	}

	r.logger.Debug("Spreadsheet parsed",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("columns", len(sheet.Header)),
		slog.Int("rows", len(sheet.Rows)))

	return sheet, nil
}

// Parse detects the format of data and extracts its table.
func (r *Reader) Parse(data []byte) (*Sheet, Format, error) {
	format := Detect(data)

	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(data)
	case FormatHTML:
		rows, err = readHTML(data)
	case FormatBIFF:
		rows, err = readXLS(data)
	default:
		err = apperrors.ErrUnexpectedFile
	}
	if err != nil {
		return nil, format, err
	}

	sheet, err := r.build(rows)
	if err != nil {
		return nil, format, err
	}
	return sheet, format, nil
}

// Detect sniffs the leading bytes of data.
func Detect(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, biffMagic):
		return FormatBIFF
	}

	head := data
	if len(head) > 4096 {
		head = head[:4096]
	}
	head = bytes.TrimPrefix(head, []byte("\xEF\xBB\xBF"))
	lower := bytes.ToLower(bytes.TrimSpace(head))
	if bytes.HasPrefix(lower, []byte("<")) && (bytes.Contains(lower, []byte("<table")) ||
		bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<!doctype html"))) {
		return FormatHTML
	}
	return FormatUnknown
}

// build drops the banner rows, takes the next row as the header and
// normalizes the remaining rows to the header width. Rows with no content
// are dropped.
func (r *Reader) build(rows [][]string) (*Sheet, error) {
	if len(rows) <= r.headerRows {
		return nil, apperrors.ErrNoHeaderRow
	}

	header := rows[r.headerRows]
	body := rows[r.headerRows+1:]

	width := len(header)
	data := make([][]string, 0, len(body))
	for _, row := range body {
		if isBlank(row) {
			continue
		}
		if len(row) > width {
			width = len(row)
		}
		data = append(data, row)
	}

	sheet := &Sheet{
		Header: normalizeHeader(header, width),
		Rows:   make([][]string, len(data)),
	}
	for i, row := range data {
		cells := make([]string, width)
		copy(cells, row)
		sheet.Rows[i] = cells
	}
	return sheet, nil
}

// normalizeHeader pads the header to width, names blank headers
// "Unnamed: <index>" and gives repeated names the first unused ".1", ".2",
// ... suffix.
func normalizeHeader(header []string, width int) []string {
	out := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			base := name
			for {
				n++
				name = base + "." + strconv.Itoa(n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
