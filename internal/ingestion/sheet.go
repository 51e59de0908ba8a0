package ingestion

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/tealeg/xlsx/v2"
)

// readRows loads the first worksheet of a report as a dense grid of cell texts.
// Row i of the result is row i of the sheet; missing rows are empty slices.
func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	case ".xls":
		return readXLS(path)
	default:
		return nil, fmt.Errorf("unsupported report format %q", filepath.Ext(path))
	}
}

func readXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open file: %w", err)
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("xlsx: no sheets in %s", path)
	}

	sheet := f.Sheets[0]
	rows := make([][]string, len(sheet.Rows))
	for i, row := range sheet.Rows {
		if row == nil {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			if cell != nil {
				// raw value, not the display format: "1,000" would be misread as one
				cells[j] = cell.Value
			}
		}
		rows[i] = cells
	}
	return rows, nil
}

func readXLS(path string) (rows [][]string, err error) {
	// the legacy BIFF reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("xls: malformed file %s: %v", path, r)
		}
	}()

	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("xls: open file: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("xls: no sheets in %s", path)
	}
	// Without the XF table every number renders from its record value. With it, RK cells
	// under a custom or date format come back as timestamps.
	wb.Xfs = nil

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("xls: cannot read first sheet of %s", path)
	}

	rows = make([][]string, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		if row := xlsRow(sheet, i); row != nil {
			rows[i] = xlsRowCells(row)
		}
	}
	return rows, nil
}

// xlsRow returns nil for a row with no records; the reader dereferences it unchecked.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// xlsProbeWidth bounds the columns read from a row that has cells but no ROW record,
// for which the reader reports a width of zero.
const xlsProbeWidth = 64

func xlsRowCells(row *xls.Row) []string {
	width := row.LastCol()
	if width < xlsProbeWidth {
		width = xlsProbeWidth
	}
	cells := make([]string, width)
	last := -1
	for j := row.FirstCol(); j < width; j++ {
		if cells[j] = row.Col(j); cells[j] != "" {
			last = j
		}
	}
	return cells[:last+1]
}
