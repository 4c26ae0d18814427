package spreadsheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// readHTML returns the rows of the first table in the document. Header and
// data cells are treated alike; non-breaking spaces become plain spaces.
func readHTML(data []byte) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table element found")
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		// skip rows of nested tables
		if tr.ParentsFiltered("table").First().Get(0) != table.Get(0) {
			return
		}
		var cells []string
		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			text := strings.ReplaceAll(cell.Text(), "\u00a0", " ")
			cells = append(cells, strings.TrimSpace(text))
		})
		rows = append(rows, cells)
	})
	return rows, nil
}
