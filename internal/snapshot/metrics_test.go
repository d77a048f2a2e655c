package snapshot_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

func TestMarginPct(t *testing.T) {
	type testCase struct {
		name    string
		revenue float64
		margin  float64
		want    float64
	}

	tests := []testCase{
		{name: "Positive", revenue: 1000, margin: 200, want: 20},
		{name: "Credit note keeps negative sign", revenue: -1000, margin: -300, want: -30},
		{name: "Loss on positive revenue", revenue: 1000, margin: -300, want: -30},
		{name: "Negative revenue positive margin", revenue: -1000, margin: 300, want: -30},
		{name: "Zero revenue", revenue: 0, margin: 50, want: 0},
		{name: "Zero margin", revenue: 500, margin: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, snapshot.MarginPct(tt.revenue, tt.margin), 1e-9)
		})
	}
}

type lookupMap map[string]*snapshot.Snapshot

func (m lookupMap) FindByPeriod(p string) (*snapshot.Snapshot, bool) {
	s, ok := m[p]
	return s, ok
}

func snapWithTotals(period string, t snapshot.Totals) *snapshot.Snapshot {
	return &snapshot.Snapshot{Period: period, Totals: t}
}

func TestDerive_YoY(t *testing.T) {
	current := snapWithTotals("Marzo 2024", snapshot.Totals{Revenue: 1200, Margin: 300})

	t.Run("Unavailable without prior year", func(t *testing.T) {
		d := snapshot.Derive(current, lookupMap{
			"Marzo 2024":   current,
			"Febrero 2023": snapWithTotals("Febrero 2023", snapshot.Totals{Revenue: 1}),
		})

		assert.False(t, d.YoY.Available)
		assert.Zero(t, d.YoY.RevenueChangePct)
		assert.Zero(t, d.YoY.MarginChangePct)
	})

	t.Run("Available with prior year", func(t *testing.T) {
		d := snapshot.Derive(current, lookupMap{
			"Marzo 2023": snapWithTotals("Marzo 2023", snapshot.Totals{Revenue: 1000, Margin: -200}),
		})

		assert.True(t, d.YoY.Available)
		assert.InDelta(t, 20.0, d.YoY.RevenueChangePct, 1e-9)
		assert.InDelta(t, 250.0, d.YoY.MarginChangePct, 1e-9)
	})

	t.Run("Zero prior revenue", func(t *testing.T) {
		d := snapshot.Derive(current, lookupMap{
			"Marzo 2023": snapWithTotals("Marzo 2023", snapshot.Totals{}),
		})

		assert.True(t, d.YoY.Available)
		assert.Zero(t, d.YoY.RevenueChangePct)
	})

	t.Run("Unparseable period", func(t *testing.T) {
		d := snapshot.Derive(snapWithTotals("cierre", snapshot.Totals{Revenue: 1}), lookupMap{})
		assert.False(t, d.YoY.Available)
	})

	t.Run("Nil history", func(t *testing.T) {
		d := snapshot.Derive(current, nil)
		assert.False(t, d.YoY.Available)
	})
}

func TestCompareBudget(t *testing.T) {
	type testCase struct {
		name       string
		totals     snapshot.Totals
		wantAvail  bool
		wantRevPct float64
		wantMarPct float64
	}

	tests := []testCase{
		{
			name:      "No budget",
			totals:    snapshot.Totals{Revenue: 1000, Margin: 200},
			wantAvail: false,
		},
		{
			name:       "Budget with cost",
			totals:     snapshot.Totals{Revenue: 900, Margin: 180, BudgetRevenue: 1000, BudgetCost: 800},
			wantAvail:  true,
			wantRevPct: 90,
			wantMarPct: 90,
		},
		{
			name:       "Zero budget margin",
			totals:     snapshot.Totals{Revenue: 1100, Margin: 100, BudgetRevenue: 1000, BudgetCost: 1000},
			wantAvail:  true,
			wantRevPct: 110,
			wantMarPct: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := snapshot.CompareBudget(&snapshot.Snapshot{Totals: tt.totals})

			assert.Equal(t, tt.wantAvail, got.Available)
			assert.InDelta(t, tt.wantRevPct, got.RevenueAchievementPct, 1e-9)
			assert.InDelta(t, tt.wantMarPct, got.MarginAchievementPct, 1e-9)
		})
	}
}

func TestExtractPeriod(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		fileName string
		want     string
	}

	tests := []testCase{
		{fileName: "Cierre_Marzo_2024.xlsx", want: "Marzo 2024"},
		{fileName: "cierre mayo 2023.csv", want: "Mayo 2023"},
		{fileName: "closing-december-2022.xls", want: "Diciembre 2022"},
		{fileName: "ENERO.xlsx", want: "Enero 2025"},
		{fileName: "datos_sin_mes.xlsx", want: "datos_sin_mes"},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.want, snapshot.ExtractPeriod(tt.fileName, now))
		})
	}
}

func TestPreviousYearPeriod(t *testing.T) {
	got, ok := snapshot.PreviousYearPeriod("Marzo 2024")
	assert.True(t, ok)
	assert.Equal(t, "Marzo 2023", got)

	_, ok = snapshot.PreviousYearPeriod("Marzo")
	assert.False(t, ok)

	_, ok = snapshot.PreviousYearPeriod("Marzo dos")
	assert.False(t, ok)
}
