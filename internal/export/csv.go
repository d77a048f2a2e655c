package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteRowsCSV writes rows as a semicolon separated file with decimal commas,
// prefixed by a UTF-8 BOM so Excel detects the encoding.
func WriteRowsCSV(w io.Writer, rows []snapshot.Row) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	header := make([]string, len(detailHeaders))
	for i, h := range detailHeaders {
		header[i] = h.(string)
	}

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.Center, r.ClientName, r.Name, r.BusinessLine, r.Status,
			amount(r.Revenue), amount(r.Cost), amount(r.Margin), amount(r.MarginPct),
			amount(r.BudgetRevenue), amount(r.BudgetCost),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func amount(v float64) string {
	return strings.Replace(decimal.NewFromFloat(v).StringFixed(2), ".", ",", 1)
}
