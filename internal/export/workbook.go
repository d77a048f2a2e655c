package export

import (
	"fmt"
	"math"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/cierres/internal/ingest"
	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

const (
	SheetSummary  = "Resumen"
	SheetDetail   = "Detalle"
	SheetCenters  = "Centros"
	SheetTemplate = "Plantilla"
)

var (
	summaryHeaders = []any{"Período", "Ingresos", "Costes", "Margen", "Rendimiento %"}
	detailHeaders  = []any{
		"Centro", "Cliente", "Nombre", "Línea de negocio", "Estado",
		"Venta", "Coste", "Margen", "Margen %", "Pres. venta", "Pres. coste",
	}
	centerHeaders = []any{"Centro", "Ventas", "Costes", "Margen", "Margen %", "Registros"}
)

// HistoryWorkbook lists one line per stored period.
func HistoryWorkbook(items []*snapshot.Snapshot) (*excelize.File, error) {
	rows := make([][]any, 0, len(items))
	for _, s := range items {
		rows = append(rows, []any{
			s.Period, s.Totals.Revenue, s.Totals.Cost, s.Totals.Margin, round2(s.MarginPct()),
		})
	}

	return newWorkbook(table{name: SheetSummary, headers: summaryHeaders, rows: rows})
}

// SnapshotWorkbook holds the processed rows of s and its per-center totals.
func SnapshotWorkbook(s *snapshot.Snapshot) (*excelize.File, error) {
	detail := make([][]any, 0, len(s.Rows))
	for _, r := range s.Rows {
		detail = append(detail, []any{
			r.Center, r.ClientName, r.Name, r.BusinessLine, r.Status,
			r.Revenue, r.Cost, r.Margin, round2(r.MarginPct), r.BudgetRevenue, r.BudgetCost,
		})
	}

	names := make([]string, 0, len(s.ByCenter))
	for name := range s.ByCenter {
		names = append(names, name)
	}

	slices.Sort(names)

	centers := make([][]any, 0, len(names))
	for _, name := range names {
		b := s.ByCenter[name]
		centers = append(centers, []any{name, b.Revenue, b.Cost, b.Margin, round2(b.MarginPct()), b.Count})
	}

	return newWorkbook(
		table{name: SheetDetail, headers: detailHeaders, rows: detail},
		table{name: SheetCenters, headers: centerHeaders, rows: centers},
	)
}

// TemplateWorkbook is an empty closing sheet with every recognised header and
// one example line.
func TemplateWorkbook() (*excelize.File, error) {
	headers := ingest.Headers()

	sample := make([]any, len(headers))
	for i := range sample {
		sample[i] = ""
	}

	example := map[ingest.Field]any{
		ingest.FieldNomCliente:   "Cliente Ejemplo",
		ingest.FieldNomCentro:    "Centro Ejemplo",
		ingest.FieldLineaNegocio: "Mantenimiento",
		ingest.FieldVenta:        1000,
		ingest.FieldCoste:        800,
		ingest.FieldMargen:       200,
		ingest.FieldMargenPct:    20,
	}

	for i, c := range ingest.Schema {
		if v, ok := example[c.Field]; ok {
			sample[i] = v
		}
	}

	hdr := make([]any, len(headers))
	for i, h := range headers {
		hdr[i] = h
	}

	return newWorkbook(table{name: SheetTemplate, headers: hdr, rows: [][]any{sample}})
}

type table struct {
	name    string
	headers []any
	rows    [][]any
}

func newWorkbook(tables ...table) (*excelize.File, error) {
	f := excelize.NewFile()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, t := range tables {
		if err := writeTable(f, i, t, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("write sheet %q: %w", t.name, err)
		}
	}

	f.SetActiveSheet(0)

	return f, nil
}

func writeTable(f *excelize.File, i int, t table, headerStyle int) error {
	if i == 0 {
		if err := f.SetSheetName(f.GetSheetName(0), t.name); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(t.name); err != nil {
		return err
	}

	if err := f.SetSheetRow(t.name, "A1", &t.headers); err != nil {
		return err
	}

	last, err := excelize.ColumnNumberToName(len(t.headers))
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(t.name, "A1", last+"1", headerStyle); err != nil {
		return err
	}

	if err := f.SetColWidth(t.name, "A", last, 16); err != nil {
		return err
	}

	for r, row := range t.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(t.name, cell, &row); err != nil {
			return err
		}
	}

	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
