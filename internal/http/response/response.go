// Package response writes JSON bodies and errors for the API handlers.
package response

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

type errorBody struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	JSON(w, r, status, errorBody{Error: msg})
}

// Snapshot is a snapshot without its rows, plus its derived metrics.
type Snapshot struct {
	ID             uuid.UUID                     `json:"id"`
	Period         string                        `json:"period"`
	FileName       string                        `json:"file_name"`
	RowCount       int                           `json:"row_count"`
	Totals         snapshot.Totals               `json:"totals"`
	MarginPct      float64                       `json:"margin_pct"`
	ByCenter       map[string]snapshot.Breakdown `json:"by_center"`
	ByBusinessLine map[string]snapshot.Breakdown `json:"by_business_line"`
	ByStatus       map[string]snapshot.Breakdown `json:"by_status"`
	Derived        snapshot.Derived              `json:"derived"`
	CreatedAt      time.Time                     `json:"created_at"`
}

func NewSnapshot(s *snapshot.Snapshot, d snapshot.Derived) Snapshot {
	return Snapshot{
		ID:             s.ID,
		Period:         s.Period,
		FileName:       s.FileName,
		RowCount:       len(s.Rows),
		Totals:         s.Totals,
		MarginPct:      s.MarginPct(),
		ByCenter:       s.ByCenter,
		ByBusinessLine: s.ByBusinessLine,
		ByStatus:       s.ByStatus,
		Derived:        d,
		CreatedAt:      s.CreatedAt,
	}
}
