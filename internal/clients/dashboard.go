package clients

import (
	"cmp"
	"slices"

	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

type CenterRevenue struct {
	Center  string  `json:"center"`
	Revenue float64 `json:"revenue"`
	Margin  float64 `json:"margin"`
}

// Dashboard is the part of a snapshot that belongs to one client.
type Dashboard struct {
	Client    Client          `json:"client"`
	Rows      []snapshot.Row  `json:"rows"`
	Totals    snapshot.Totals `json:"totals"`
	MarginPct float64         `json:"margin_pct"`
	Centers   []CenterRevenue `json:"centers"`
}

// BuildDashboard selects the rows whose client or order name contains the
// client's name. Centers are sorted by revenue, highest first.
func BuildDashboard(s *snapshot.Snapshot, c Client) Dashboard {
	view := s.View(snapshot.Filter{Client: c.Name})

	centers := make([]CenterRevenue, 0, len(view.ByCenter))
	for name, b := range view.ByCenter {
		centers = append(centers, CenterRevenue{Center: name, Revenue: b.Revenue, Margin: b.Margin})
	}

	slices.SortFunc(centers, func(a, b CenterRevenue) int {
		if n := cmp.Compare(b.Revenue, a.Revenue); n != 0 {
			return n
		}

		return cmp.Compare(a.Center, b.Center)
	})

	return Dashboard{
		Client:    c,
		Rows:      view.Rows,
		Totals:    view.Totals,
		MarginPct: view.Totals.MarginPct(),
		Centers:   centers,
	}
}
