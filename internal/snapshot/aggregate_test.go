package snapshot_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

func sampleRows() []snapshot.Row {
	return []snapshot.Row{
		{Center: "Centro A", BusinessLine: "Mant.", Status: "Cerrado", Revenue: 1000, Cost: 800, Margin: 200, BudgetRevenue: 1200, BudgetCost: 900},
		{Center: "Centro A", BusinessLine: "Obras", Status: "Abierto", Revenue: 500, Cost: 450, Margin: 50},
		{Center: "Centro B", BusinessLine: "Mant.", Status: "Cerrado", Revenue: 2000, Cost: 1500, Margin: 500, BudgetRevenue: 1800},
		{Center: snapshot.NoCenter, BusinessLine: snapshot.NoBusinessLine, Status: snapshot.NoStatus, Revenue: -100, Cost: -70, Margin: -30},
		{Center: "Centro C", BusinessLine: "Obras", Status: "Abierto", Revenue: 250, Cost: 300, Margin: -50, BudgetCost: 100},
	}
}

func assertAggregationEqual(t *testing.T, want, got snapshot.Aggregation) {
	t.Helper()

	assertBreakdownEqual(t, want.Totals, got.Totals)

	for name, pair := range map[string][2]map[string]snapshot.Breakdown{
		"center": {want.ByCenter, got.ByCenter},
		"line":   {want.ByBusinessLine, got.ByBusinessLine},
		"status": {want.ByStatus, got.ByStatus},
	} {
		require.Len(t, pair[1], len(pair[0]), name)

		for k, b := range pair[0] {
			other, ok := pair[1][k]
			require.True(t, ok, "%s %q missing", name, k)
			assertBreakdownEqual(t, b, other)
		}
	}
}

func assertBreakdownEqual(t *testing.T, want, got snapshot.Breakdown) {
	t.Helper()

	assert.InDelta(t, want.Revenue, got.Revenue, 1e-9)
	assert.InDelta(t, want.Cost, got.Cost, 1e-9)
	assert.InDelta(t, want.Margin, got.Margin, 1e-9)
	assert.InDelta(t, want.BudgetRevenue, got.BudgetRevenue, 1e-9)
	assert.InDelta(t, want.BudgetCost, got.BudgetCost, 1e-9)
	assert.Equal(t, want.Count, got.Count)
}

func TestAggregate_Totals(t *testing.T) {
	agg := snapshot.Aggregate(sampleRows())

	assert.InDelta(t, 3650.0, agg.Totals.Revenue, 1e-9)
	assert.InDelta(t, 2980.0, agg.Totals.Cost, 1e-9)
	assert.InDelta(t, 670.0, agg.Totals.Margin, 1e-9)
	assert.InDelta(t, 3000.0, agg.Totals.BudgetRevenue, 1e-9)
	assert.InDelta(t, 1000.0, agg.Totals.BudgetCost, 1e-9)
	assert.Equal(t, 5, agg.Totals.Count)

	require.Contains(t, agg.ByCenter, "Centro A")
	assert.InDelta(t, 1500.0, agg.ByCenter["Centro A"].Revenue, 1e-9)
	assert.Equal(t, 2, agg.ByCenter["Centro A"].Count)

	require.Contains(t, agg.ByBusinessLine, "Mant.")
	assert.InDelta(t, 700.0, agg.ByBusinessLine["Mant."].Margin, 1e-9)

	require.Contains(t, agg.ByStatus, snapshot.NoStatus)
	assert.Equal(t, 1, agg.ByStatus[snapshot.NoStatus].Count)
}

func TestAggregate_Empty(t *testing.T) {
	agg := snapshot.Aggregate(nil)

	assert.Zero(t, agg.Totals)
	assert.Empty(t, agg.ByCenter)
	assert.NotNil(t, agg.ByCenter)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	rows := sampleRows()
	want := snapshot.Aggregate(rows)

	r := rand.New(rand.NewPCG(1, 2))

	for range 20 {
		shuffled := append([]snapshot.Row(nil), rows...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		assertAggregationEqual(t, want, snapshot.Aggregate(shuffled))
	}
}

func TestAggregate_PartitionsMerge(t *testing.T) {
	rows := sampleRows()
	want := snapshot.Aggregate(rows)

	for split := 0; split <= len(rows); split++ {
		left := snapshot.Aggregate(rows[:split])
		right := snapshot.Aggregate(rows[split:])

		assertAggregationEqual(t, want, left.Merge(right))
	}
}

func TestBreakdown_MarginPct(t *testing.T) {
	b := snapshot.Breakdown{Revenue: 1000, Margin: 200}
	assert.InDelta(t, 20.0, b.MarginPct(), 1e-9)
}
