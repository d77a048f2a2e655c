package snapshot

// Aggregation holds the totals and the per-dimension breakdowns of a row set.
type Aggregation struct {
	Totals         Totals
	ByCenter       map[string]Breakdown
	ByBusinessLine map[string]Breakdown
	ByStatus       map[string]Breakdown
}

func newAggregation() Aggregation {
	return Aggregation{
		ByCenter:       make(map[string]Breakdown),
		ByBusinessLine: make(map[string]Breakdown),
		ByStatus:       make(map[string]Breakdown),
	}
}

// Aggregate sums the rows in a single pass. Accumulation is plain addition, so
// the result does not depend on row order.
func Aggregate(rows []Row) Aggregation {
	agg := newAggregation()
	for _, r := range rows {
		agg.Add(r)
	}

	return agg
}

// Add folds one row into the running totals and the three breakdowns.
func (a *Aggregation) Add(r Row) {
	a.Totals.Add(r)
	addTo(a.ByCenter, r.Center, r)
	addTo(a.ByBusinessLine, r.BusinessLine, r)
	addTo(a.ByStatus, r.Status, r)
}

// Merge combines two aggregations of disjoint row sets.
func (a Aggregation) Merge(o Aggregation) Aggregation {
	out := newAggregation()
	out.Totals = a.Totals.Merge(o.Totals)
	out.ByCenter = mergeMaps(a.ByCenter, o.ByCenter)
	out.ByBusinessLine = mergeMaps(a.ByBusinessLine, o.ByBusinessLine)
	out.ByStatus = mergeMaps(a.ByStatus, o.ByStatus)

	return out
}

func addTo(m map[string]Breakdown, key string, r Row) {
	b := m[key]
	b.Add(r)
	m[key] = b
}

func mergeMaps(a, b map[string]Breakdown) map[string]Breakdown {
	out := make(map[string]Breakdown, max(len(a), len(b)))
	for k, v := range a {
		out[k] = v
	}

	for k, v := range b {
		out[k] = out[k].Merge(v)
	}

	return out
}
