package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/cierres/internal/sheet"
	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

// Report describes how a sheet was read: which columns matched only
// approximately and how many rows were left out, per reason.
type Report struct {
	Columns     Columns         `json:"-"`
	Approximate []Match         `json:"approximate_columns"`
	Discarded   map[Discard]int `json:"discarded"`
	Accepted    int             `json:"accepted"`
}

// DiscardedTotal is the number of rows left out for any reason.
func (r *Report) DiscardedTotal() int {
	n := 0
	for _, c := range r.Discarded {
		n += c
	}

	return n
}

// Engine turns a raw sheet into a snapshot. It holds no per-sheet state and
// is safe for concurrent use.
type Engine struct {
	schema []Column
	now    func() time.Time
}

func NewEngine() *Engine {
	return &Engine{schema: Schema, now: time.Now}
}

// WithClock returns a copy of the engine reading the current time from now.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	cp := *e
	cp.now = now

	return &cp
}

// Process resolves columns once, classifies every row and aggregates the
// survivors. It fails with ErrNoRows for a sheet without data rows and with a
// *MissingColumnsError when revenue or cost cannot be located.
func (e *Engine) Process(ctx context.Context, raw *sheet.Raw) (*snapshot.Snapshot, *Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if raw == nil || len(raw.Rows) == 0 {
		return nil, nil, ErrNoRows
	}

	cols := Resolve(raw.Headers, e.schema)

	if missing := cols.Missing(RequiredFields...); len(missing) > 0 {
		return nil, nil, newMissingColumnsError(missing, raw.Headers)
	}

	report := &Report{
		Columns:     cols,
		Approximate: cols.Approximate(),
		Discarded:   make(map[Discard]int),
	}

	for _, m := range report.Approximate {
		slog.Warn("approximate column match",
			"file", raw.FileName,
			"field", m.Field,
			"expected", headerOf(m.Field),
			"header", m.Header,
		)
	}

	rows := make([]snapshot.Row, 0, len(raw.Rows))

	for i, cells := range raw.Rows {
		row, discard := Classify(cells, cols)
		if discard != Keep {
			report.Discarded[discard]++
			slog.Debug("row discarded", "file", raw.FileName, "row", i+1, "reason", discard)

			continue
		}

		rows = append(rows, row)
	}

	report.Accepted = len(rows)

	now := e.now()
	s := snapshot.New(snapshot.ExtractPeriod(raw.FileName, now), raw.FileName, rows, now)

	slog.Info("sheet processed",
		"file", raw.FileName,
		"period", s.Period,
		"accepted", report.Accepted,
		"discarded", report.DiscardedTotal(),
		"approximate_columns", len(report.Approximate),
	)

	return s, report, nil
}
