package ingest

import (
	"strings"

	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

// Discard is the reason a raw row was left out. Keep means it was accepted.
type Discard int

const (
	Keep Discard = iota
	DiscardEmpty
	DiscardSentinelName
	DiscardSummary
	DiscardUnidentified
	DiscardInert
)

func (d Discard) String() string {
	switch d {
	case Keep:
		return "keep"
	case DiscardEmpty:
		return "empty"
	case DiscardSentinelName:
		return "sentinel_name"
	case DiscardSummary:
		return "summary"
	case DiscardUnidentified:
		return "unidentified"
	case DiscardInert:
		return "inert"
	default:
		return "unknown"
	}
}

func (d Discard) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// sentinelNames are name values that are placeholders or repeated headers.
var sentinelNames = []string{"UNDEFINED", "NULL", "NOMBRE", "NOM_CLIENTE", "NOM CLIENTE"}

// summaryKeywords mark subtotal and total lines.
var summaryKeywords = []string{
	"TOTAL", "SUBTOTAL", "STOTAL", "SUMA", "RESULTADO", "PROMEDIO", "ACUMULADO", "VARIACION",
}

// Classify turns one raw row into a snapshot row, or reports why it is
// discarded. Checks run in a fixed order and the first one that applies wins.
func Classify(row []string, cols Columns) (snapshot.Row, Discard) {
	if isBlank(row) {
		return snapshot.Row{}, DiscardEmpty
	}

	if isRepeatedHeader(row, cols) {
		return snapshot.Row{}, DiscardSentinelName
	}

	clientName := cols.cell(row, FieldNomCliente)
	orderName := cols.cell(row, FieldNombre)

	name := clientName
	if name == "" {
		name = orderName
	}

	if cols.Has(FieldNomCliente) || cols.Has(FieldNombre) {
		if name == "" || isSentinelName(name) {
			return snapshot.Row{}, DiscardSentinelName
		}
	}

	if isSummary(row) {
		return snapshot.Row{}, DiscardSummary
	}

	center := cols.cell(row, FieldNomCentro)

	if name == "" && center == "" &&
		cols.cell(row, FieldCodCliente) == "" &&
		cols.cell(row, FieldCodCentro) == "" {
		return snapshot.Row{}, DiscardUnidentified
	}

	revenue := ParseNumber(cols.cell(row, FieldVenta))
	cost := ParseNumber(cols.cell(row, FieldCoste))

	margin := revenue - cost
	if cols.Has(FieldMargen) {
		margin = ParseNumber(cols.cell(row, FieldMargen))
	}

	if center == "" && revenue == 0 && cost == 0 && margin == 0 {
		return snapshot.Row{}, DiscardInert
	}

	marginPct := ParseNumber(cols.cell(row, FieldMargenPct))
	if marginPct == 0 {
		marginPct = snapshot.MarginPct(revenue, margin)
	}

	return snapshot.Row{
		Center:        orDefault(center, snapshot.NoCenter),
		ClientName:    clientName,
		Name:          orderName,
		BusinessLine:  orDefault(cols.cell(row, FieldLineaNegocio), snapshot.NoBusinessLine),
		Status:        orDefault(cols.cell(row, FieldEstado), snapshot.NoStatus),
		Revenue:       revenue,
		Cost:          cost,
		Margin:        margin,
		MarginPct:     marginPct,
		BudgetRevenue: ParseNumber(cols.cell(row, FieldPresVenta)),
		BudgetCost:    ParseNumber(cols.cell(row, FieldPresCoste)),
	}, Keep
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

// isRepeatedHeader reports whether the amount cells repeat their own column
// headers. It needs no name column to resolve.
func isRepeatedHeader(row []string, cols Columns) bool {
	for _, f := range []Field{FieldVenta, FieldCoste} {
		m, ok := cols[f]
		if !ok || m.Index < 0 {
			return false
		}

		if Normalize(cols.cell(row, f)) != Normalize(m.Header) {
			return false
		}
	}

	return true
}

func isSentinelName(name string) bool {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for _, s := range sentinelNames {
		if upper == s {
			return true
		}
	}

	return false
}

func isSummary(row []string) bool {
	for _, c := range row {
		if c == "" {
			continue
		}

		folded := strings.ToUpper(stripAccents(c))
		for _, k := range summaryKeywords {
			if strings.Contains(folded, k) {
				return true
			}
		}
	}

	return false
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}
