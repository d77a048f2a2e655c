package snapshot

import (
	"cmp"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Filter narrows the rows of a snapshot. Empty fields match everything.
type Filter struct {
	Center         string
	BusinessLine   string
	Status         string
	Client         string
	LowPerformance bool
}

// Match reports whether r passes the filter.
func (f Filter) Match(r Row) bool {
	if f.Center != "" && r.Center != f.Center {
		return false
	}

	if f.BusinessLine != "" && r.BusinessLine != f.BusinessLine {
		return false
	}

	if f.Status != "" && r.Status != f.Status {
		return false
	}

	if f.Client != "" && !r.MatchesClient(f.Client) {
		return false
	}

	if f.LowPerformance && r.MarginPct >= LowPerformanceThreshold {
		return false
	}

	return true
}

// View is a filtered subset of a snapshot with recomputed totals.
type View struct {
	Rows           []Row                `json:"rows"`
	Totals         Totals               `json:"totals"`
	ByCenter       map[string]Breakdown `json:"by_center"`
	ByBusinessLine map[string]Breakdown `json:"by_business_line"`
}

// View applies f and re-aggregates the matching rows. The snapshot is not modified.
func (s *Snapshot) View(f Filter) View {
	rows := lo.Filter(s.Rows, func(r Row, _ int) bool { return f.Match(r) })
	agg := Aggregate(rows)

	return View{
		Rows:           rows,
		Totals:         agg.Totals,
		ByCenter:       agg.ByCenter,
		ByBusinessLine: agg.ByBusinessLine,
	}
}

// Options lists the distinct dimension values users can filter on.
type Options struct {
	Centers       []string `json:"centers"`
	BusinessLines []string `json:"business_lines"`
	Statuses      []string `json:"statuses"`
}

// FilterOptions returns the sorted distinct centers, lines and statuses of rows,
// leaving out empty values and placeholders.
func FilterOptions(rows []Row) Options {
	pick := func(get func(Row) string, placeholder string) []string {
		values := lo.Uniq(lo.Map(rows, func(r Row, _ int) string { return get(r) }))
		values = lo.Without(values, "", placeholder)
		slices.Sort(values)

		return values
	}

	return Options{
		Centers:       pick(func(r Row) string { return r.Center }, NoCenter),
		BusinessLines: pick(func(r Row) string { return r.BusinessLine }, NoBusinessLine),
		Statuses:      pick(func(r Row) string { return r.Status }, NoStatus),
	}
}

// Detail is a drill-down into a single center or business line.
type Detail struct {
	Name      string    `json:"name"`
	Breakdown Breakdown `json:"breakdown"`
	MarginPct float64   `json:"margin_pct"`
	Rows      []Row     `json:"rows"`
}

// CenterDetail returns the rows and totals of one center.
func (s *Snapshot) CenterDetail(center string) (Detail, bool) {
	b, ok := s.ByCenter[center]
	if !ok {
		return Detail{}, false
	}

	return Detail{
		Name:      center,
		Breakdown: b,
		MarginPct: b.MarginPct(),
		Rows:      lo.Filter(s.Rows, func(r Row, _ int) bool { return r.Center == center }),
	}, true
}

// BusinessLineDetail returns the rows and totals of one business line.
func (s *Snapshot) BusinessLineDetail(line string) (Detail, bool) {
	b, ok := s.ByBusinessLine[line]
	if !ok {
		return Detail{}, false
	}

	return Detail{
		Name:      line,
		Breakdown: b,
		MarginPct: b.MarginPct(),
		Rows:      lo.Filter(s.Rows, func(r Row, _ int) bool { return r.BusinessLine == line }),
	}, true
}

// UnknownClient labels rows that carry neither a client nor an order name.
const UnknownClient = "Desconocido"

// ClientSummary aggregates the rows of one client.
type ClientSummary struct {
	Name      string    `json:"name"`
	Breakdown Breakdown `json:"breakdown"`
	MarginPct float64   `json:"margin_pct"`
	Rows      []Row     `json:"rows"`
}

// Clients groups rows by client and sorts the result by revenue, highest first.
func Clients(rows []Row) []ClientSummary {
	index := make(map[string]int)

	var out []ClientSummary

	for _, r := range rows {
		name := r.DisplayName()
		if name == "" {
			name = UnknownClient
		}

		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, ClientSummary{Name: name})
		}

		out[i].Breakdown.Add(r)
		out[i].Rows = append(out[i].Rows, r)
	}

	for i := range out {
		out[i].MarginPct = out[i].Breakdown.MarginPct()
	}

	slices.SortStableFunc(out, func(a, b ClientSummary) int {
		return cmp.Compare(b.Breakdown.Revenue, a.Breakdown.Revenue)
	})

	return out
}

// CenterPerformance is one center's margin contribution.
type CenterPerformance struct {
	Name      string  `json:"name"`
	Revenue   float64 `json:"revenue"`
	Margin    float64 `json:"margin"`
	MarginPct float64 `json:"margin_pct"`
}

// Summary is the executive summary of a snapshot.
type Summary struct {
	Revenue    float64             `json:"revenue"`
	Margin     float64             `json:"margin"`
	MarginPct  float64             `json:"margin_pct"`
	TopCenter  *CenterPerformance  `json:"top_center,omitempty"`
	LowCenters []CenterPerformance `json:"low_centers"`
}

// Summarize finds the center with the largest margin and the centers under
// LowPerformanceThreshold, lowest first.
func Summarize(s *Snapshot) Summary {
	centers := make([]CenterPerformance, 0, len(s.ByCenter))
	for name, b := range s.ByCenter {
		centers = append(centers, CenterPerformance{
			Name:      name,
			Revenue:   b.Revenue,
			Margin:    b.Margin,
			MarginPct: b.MarginPct(),
		})
	}

	// Map iteration is random; sort by name first so ties resolve deterministically.
	slices.SortFunc(centers, func(a, b CenterPerformance) int { return strings.Compare(a.Name, b.Name) })

	sum := Summary{
		Revenue:    s.Totals.Revenue,
		Margin:     s.Totals.Margin,
		MarginPct:  s.Totals.MarginPct(),
		LowCenters: []CenterPerformance{},
	}

	if len(centers) > 0 {
		top := slices.MaxFunc(centers, func(a, b CenterPerformance) int { return cmp.Compare(a.Margin, b.Margin) })
		sum.TopCenter = &top
	}

	for _, c := range centers {
		if c.MarginPct < LowPerformanceThreshold {
			sum.LowCenters = append(sum.LowCenters, c)
		}
	}

	slices.SortStableFunc(sum.LowCenters, func(a, b CenterPerformance) int {
		return cmp.Compare(a.MarginPct, b.MarginPct)
	})

	return sum
}

// MatchesClient reports whether the client or order name of r contains client,
// ignoring case.
func (r Row) MatchesClient(client string) bool {
	needle := strings.ToUpper(strings.TrimSpace(client))

	return strings.Contains(strings.ToUpper(r.ClientName), needle) ||
		strings.Contains(strings.ToUpper(r.Name), needle)
}
