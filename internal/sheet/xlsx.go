package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

func readXLSX(r io.Reader) (string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, nil
	}

	// Raw values keep numbers free of the workbook's display formatting.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, fmt.Errorf("get rows of %q: %w", sheets[0], err)
	}

	return sheets[0], rows, nil
}
