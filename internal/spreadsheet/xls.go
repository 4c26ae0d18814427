package spreadsheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/extrame/xls"
)

// biffMaxColumns is the BIFF8 column limit. Rows built from cell records
// alone report no last column, so every column up to the limit is read.
const biffMaxColumns = 256

// readXLS returns every row of the first sheet of a BIFF (Excel 97-2003)
// workbook. Missing rows come back empty.
func readXLS(data []byte) (rows [][]string, err error) {
	// the decoder panics on some malformed records
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("malformed workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if wb == nil {
		return nil, fmt.Errorf("workbook stream not found")
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		rows = append(rows, biffRow(sheet, i))
	}
	return rows, nil
}

func biffRow(sheet *xls.WorkSheet, i int) (cells []string) {
	// WorkSheet.Row dereferences rows that were never written
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()

	row := sheet.Row(i)
	if row == nil {
		return nil
	}

	cells = make([]string, biffMaxColumns)
	last := -1
	for j := range cells {
		cells[j] = row.Col(j)
		if strings.TrimSpace(cells[j]) != "" {
			last = j
		}
	}
	return cells[:last+1]
}
