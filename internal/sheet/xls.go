package sheet

import (
	"fmt"
	"io"
	"os"

	"github.com/shakinm/xlsReader/xls"
)

// readXLS reads legacy BIFF workbooks. The reader library only opens files by
// path, so the upload is spooled to a temporary file first.
func readXLS(r io.Reader) (string, [][]string, error) {
	tmp, err := os.CreateTemp("", "cierre-*.xls")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", nil, fmt.Errorf("spool xls: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}

	wb, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return "", nil, fmt.Errorf("open workbook: %w", err)
	}

	if wb.GetNumberSheets() == 0 {
		return "", nil, nil
	}

	sh, err := wb.GetSheet(0)
	if err != nil {
		return "", nil, fmt.Errorf("get first sheet: %w", err)
	}

	if sh == nil {
		return "", nil, nil
	}

	var rows [][]string

	for i := 0; i <= int(sh.GetNumberRows()); i++ {
		row, err := sh.GetRow(i)
		if err != nil || row == nil {
			rows = append(rows, nil)
			continue
		}

		var cells []string

		for _, col := range row.GetCols() {
			if col == nil {
				cells = append(cells, "")
				continue
			}

			cells = append(cells, col.GetString())
		}

		rows = append(rows, cells)
	}

	return sh.GetName(), rows, nil
}
