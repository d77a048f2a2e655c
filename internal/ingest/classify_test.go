package ingest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cierres/internal/ingest"
	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

var fullHeaders = []string{
	"Cod_cliente", "Nom_cliente", "Cod_centro", "Nom_centro", "Lin_negocio", "Nombre",
	"Estado", "Pres_venta", "Pres_coste", "Venta", "Coste", "Margen", "Margen_%_vta",
}

func TestClassify(t *testing.T) {
	cols := ingest.Resolve(fullHeaders, ingest.Schema)

	type testCase struct {
		name    string
		row     []string
		discard ingest.Discard
	}

	tests := []testCase{
		{
			name:    "Empty row",
			row:     []string{"", " ", ""},
			discard: ingest.DiscardEmpty,
		},
		{
			name:    "Nil row",
			row:     nil,
			discard: ingest.DiscardEmpty,
		},
		{
			name:    "Missing name",
			row:     []string{"C1", "", "10", "Centro A", "Mant.", "", "Cerrado", "", "", "100", "80", "20", ""},
			discard: ingest.DiscardSentinelName,
		},
		{
			name:    "Undefined client",
			row:     []string{"C1", " undefined ", "10", "Centro A", "Mant.", "", "Cerrado", "", "", "100", "80", "20", ""},
			discard: ingest.DiscardSentinelName,
		},
		{
			name:    "Repeated header",
			row:     fullHeaders,
			discard: ingest.DiscardSentinelName,
		},
		{
			name:    "Subtotal line",
			row:     []string{"", "ALIMERKA", "", "Centro A", "Subtotal Mant.", "", "", "", "", "100", "80", "20", ""},
			discard: ingest.DiscardSummary,
		},
		{
			name:    "Accented keyword",
			row:     []string{"", "ALIMERKA", "", "Variación anual", "", "", "", "", "", "100", "80", "20", ""},
			discard: ingest.DiscardSummary,
		},
		{
			name:    "Inert row",
			row:     []string{"", "ALIMERKA", "", "", "", "", "", "", "", "0", "0,00", "", ""},
			discard: ingest.DiscardInert,
		},
		{
			name:    "Fallback to order name",
			row:     []string{"", "", "", "Centro A", "", "Obra 12", "", "", "", "50", "10", "40", ""},
			discard: ingest.Keep,
		},
		{
			name:    "Valid row",
			row:     []string{"C1", "ALIMERKA", "10", "Centro A", "Mant.", "Obra 1", "Cerrado", "1.200,00", "900", "1.000,00", "800", "200", ""},
			discard: ingest.Keep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, discard := ingest.Classify(tt.row, cols)
			assert.Equal(t, tt.discard, discard)
		})
	}
}

func TestClassify_RepeatedHeaderWithoutNameColumn(t *testing.T) {
	headers := []string{"Nom_centro", "Lin_negocio", "Estado", "Venta", "Coste", "Margen"}
	cols := ingest.Resolve(headers, ingest.Schema)

	type testCase struct {
		name    string
		row     []string
		discard ingest.Discard
	}

	tests := []testCase{
		{name: "Exact repeat", row: headers, discard: ingest.DiscardSentinelName},
		{name: "Different case and spacing", row: []string{"NOM CENTRO", "Lin negocio", "ESTADO", " VENTA ", "coste", "MARGEN"}, discard: ingest.DiscardSentinelName},
		{name: "Data row", row: []string{"Centro A", "Mant.", "Cerrado", "1000", "800", "200"}, discard: ingest.Keep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, discard := ingest.Classify(tt.row, cols)
			assert.Equal(t, tt.discard, discard)
		})
	}
}

func TestClassify_Unidentified(t *testing.T) {
	cols := ingest.Resolve([]string{"Lin_negocio", "Venta", "Coste"}, ingest.Schema)

	_, discard := ingest.Classify([]string{"Mant.", "100", "50"}, cols)
	assert.Equal(t, ingest.DiscardUnidentified, discard)
}

func TestClassify_Normalizes(t *testing.T) {
	cols := ingest.Resolve(fullHeaders, ingest.Schema)

	row, discard := ingest.Classify(
		[]string{"C1", "ALIMERKA", "10", "Centro A", "Mant.", "Obra 1", "Cerrado", "1.200,00", "900", "1.000,00", "800", "200", ""},
		cols,
	)
	require.Equal(t, ingest.Keep, discard)

	assert.Equal(t, snapshot.Row{
		Center:        "Centro A",
		ClientName:    "ALIMERKA",
		Name:          "Obra 1",
		BusinessLine:  "Mant.",
		Status:        "Cerrado",
		Revenue:       1000,
		Cost:          800,
		Margin:        200,
		MarginPct:     20,
		BudgetRevenue: 1200,
		BudgetCost:    900,
	}, row)
}

func TestClassify_Placeholders(t *testing.T) {
	cols := ingest.Resolve([]string{"Cod_centro", "Venta", "Coste", "Margen"}, ingest.Schema)

	row, discard := ingest.Classify([]string{"10", "-1000", "-700", "-300"}, cols)
	require.Equal(t, ingest.Keep, discard)

	assert.Equal(t, snapshot.NoCenter, row.Center)
	assert.Equal(t, snapshot.NoBusinessLine, row.BusinessLine)
	assert.Equal(t, snapshot.NoStatus, row.Status)
	assert.InDelta(t, -30.0, row.MarginPct, 1e-9)
}

func TestClassify_MarginPct(t *testing.T) {
	cols := ingest.Resolve([]string{"Nom_centro", "Venta", "Coste", "Margen", "Margen_%_vta"}, ingest.Schema)

	type testCase struct {
		name     string
		explicit string
		want     float64
	}

	tests := []testCase{
		{name: "Explicit column wins", explicit: "21,5", want: 21.5},
		{name: "Zero explicit is recomputed", explicit: "0", want: 25},
		{name: "Blank explicit is recomputed", explicit: "", want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, discard := ingest.Classify([]string{"Centro A", "400", "300", "100", tt.explicit}, cols)
			require.Equal(t, ingest.Keep, discard)
			assert.InDelta(t, tt.want, row.MarginPct, 1e-9)
		})
	}
}

func TestClassify_MarginWithoutColumn(t *testing.T) {
	cols := ingest.Resolve([]string{"Nom_centro", "Venta", "Coste"}, ingest.Schema)

	row, discard := ingest.Classify([]string{"Centro A", "1000", "750"}, cols)
	require.Equal(t, ingest.Keep, discard)
	assert.InDelta(t, 250.0, row.Margin, 1e-9)
}

func TestClassify_Idempotent(t *testing.T) {
	raw := [][]string{
		{"C1", "ALIMERKA", "10", "Centro A", "Mant.", "Obra 1", "Cerrado", "", "", "1000", "800", "200", ""},
		{"", "", "", "", "", "", "", "", "", "", "", "", ""},
		{"", "TOTAL", "", "", "", "", "", "", "", "1000", "800", "200", ""},
		fullHeaders,
		{"C2", "CARREFOUR", "", "", "Obras", "", "", "", "", "500", "450", "50", "10"},
		{"", "NULL", "", "Centro B", "", "", "", "", "", "1", "1", "0", ""},
		{"C3", "BASIC-FIT", "11", "Centro B", "", "", "Abierto", "", "", "0", "0", "0", ""},
	}

	cols := ingest.Resolve(fullHeaders, ingest.Schema)

	var survivors [][]string

	for _, r := range raw {
		if _, d := ingest.Classify(r, cols); d == ingest.Keep {
			survivors = append(survivors, r)
		}
	}

	require.Len(t, survivors, 3)

	again := ingest.Resolve(fullHeaders, ingest.Schema)
	for _, r := range survivors {
		_, d := ingest.Classify(r, again)
		assert.Equal(t, ingest.Keep, d)
	}
}
