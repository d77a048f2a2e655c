package snapshot

import (
	"time"

	"github.com/google/uuid"
)

// Placeholders assigned to rows that lack a dimension value. They take part in
// aggregation but are hidden from filter option lists.
const (
	NoCenter       = "Sin Centro"
	NoBusinessLine = "Sin Línea"
	NoStatus       = "Sin Estado"
)

// Row is one validated, normalised business record from a closing sheet.
type Row struct {
	Center        string  `json:"center"`
	ClientName    string  `json:"client_name"`
	Name          string  `json:"name,omitempty"`
	BusinessLine  string  `json:"business_line"`
	Status        string  `json:"status"`
	Revenue       float64 `json:"revenue"`
	Cost          float64 `json:"cost"`
	Margin        float64 `json:"margin"`
	MarginPct     float64 `json:"margin_pct"`
	BudgetRevenue float64 `json:"budget_revenue"`
	BudgetCost    float64 `json:"budget_cost"`
}

// DisplayName returns the client name, falling back to the order name.
func (r Row) DisplayName() string {
	if r.ClientName != "" {
		return r.ClientName
	}

	return r.Name
}

// Breakdown accumulates figures for one dimension value (or for the whole sheet).
type Breakdown struct {
	Revenue       float64 `json:"revenue"`
	Cost          float64 `json:"cost"`
	Margin        float64 `json:"margin"`
	BudgetRevenue float64 `json:"budget_revenue"`
	BudgetCost    float64 `json:"budget_cost"`
	Count         int     `json:"count"`
}

// Add accumulates a single row.
func (b *Breakdown) Add(r Row) {
	b.Revenue += r.Revenue
	b.Cost += r.Cost
	b.Margin += r.Margin
	b.BudgetRevenue += r.BudgetRevenue
	b.BudgetCost += r.BudgetCost
	b.Count++
}

// Merge returns the sum of two breakdowns.
func (b Breakdown) Merge(o Breakdown) Breakdown {
	return Breakdown{
		Revenue:       b.Revenue + o.Revenue,
		Cost:          b.Cost + o.Cost,
		Margin:        b.Margin + o.Margin,
		BudgetRevenue: b.BudgetRevenue + o.BudgetRevenue,
		BudgetCost:    b.BudgetCost + o.BudgetCost,
		Count:         b.Count + o.Count,
	}
}

// MarginPct is the sign-preserving margin percentage of the breakdown.
func (b Breakdown) MarginPct() float64 {
	return MarginPct(b.Revenue, b.Margin)
}

// Totals is the zero-dimension breakdown over every row of a snapshot.
type Totals = Breakdown

// Snapshot is the immutable result of ingesting one period's closing sheet.
// Views and filters derive new values from it; nothing mutates it after creation.
type Snapshot struct {
	ID             uuid.UUID            `json:"id"`
	Period         string               `json:"period"`
	FileName       string               `json:"file_name"`
	Rows           []Row                `json:"rows"`
	Totals         Totals               `json:"totals"`
	ByCenter       map[string]Breakdown `json:"by_center"`
	ByBusinessLine map[string]Breakdown `json:"by_business_line"`
	ByStatus       map[string]Breakdown `json:"by_status"`
	CreatedAt      time.Time            `json:"created_at"`
}

// New builds a snapshot from already classified rows.
func New(period, fileName string, rows []Row, createdAt time.Time) *Snapshot {
	agg := Aggregate(rows)

	return &Snapshot{
		ID:             uuid.New(),
		Period:         period,
		FileName:       fileName,
		Rows:           rows,
		Totals:         agg.Totals,
		ByCenter:       agg.ByCenter,
		ByBusinessLine: agg.ByBusinessLine,
		ByStatus:       agg.ByStatus,
		CreatedAt:      createdAt,
	}
}

// MarginPct returns the margin as a percentage of revenue for the whole snapshot.
func (s *Snapshot) MarginPct() float64 {
	return s.Totals.MarginPct()
}

// Complete returns s unchanged when its breakdowns are present, otherwise a
// copy rebuilt from its rows that keeps the same ID. Backups and imports may
// carry rows without the breakdown maps.
func Complete(s *Snapshot) *Snapshot {
	if s.ByCenter != nil && s.ByBusinessLine != nil && s.ByStatus != nil {
		return s
	}

	rebuilt := New(s.Period, s.FileName, s.Rows, s.CreatedAt)
	rebuilt.ID = s.ID

	return rebuilt
}
