package history

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cierres/internal/closing"
	"github.com/MrJamesThe3rd/cierres/internal/export"
	"github.com/MrJamesThe3rd/cierres/internal/history"
	"github.com/MrJamesThe3rd/cierres/internal/http/response"
	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

type Handler struct {
	svc *closing.Service
}

func NewHandler(svc *closing.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/backup", h.backup)
	r.Put("/backup", h.restore)
	r.Delete("/{index}", h.delete)
	r.Post("/{index}/select", h.selectIndex)
}

type entryResponse struct {
	Index     int             `json:"index"`
	ID        uuid.UUID       `json:"id"`
	Period    string          `json:"period"`
	FileName  string          `json:"file_name"`
	Totals    snapshot.Totals `json:"totals"`
	MarginPct float64         `json:"margin_pct"`
	CreatedAt time.Time       `json:"created_at"`
}

type mutationResponse struct {
	Period  string `json:"period,omitempty"`
	Count   int    `json:"count"`
	Warning string `json:"warning,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items := h.svc.History()

	resp := make([]entryResponse, 0, len(items))
	for i, s := range items {
		resp = append(resp, entryResponse{
			Index:     i,
			ID:        s.ID,
			Period:    s.Period,
			FileName:  s.FileName,
			Totals:    s.Totals,
			MarginPct: s.MarginPct(),
			CreatedAt: s.CreatedAt,
		})
	}

	response.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	index, ok := parseIndex(w, r)
	if !ok {
		return
	}

	removed, err := h.svc.DeleteHistory(r.Context(), index)
	if removed == nil {
		response.Error(w, r, statusOf(err), err.Error())
		return
	}

	response.JSON(w, r, http.StatusOK, mutationResponse{
		Period:  removed.Period,
		Count:   len(h.svc.History()),
		Warning: warningOf(err),
	})
}

func (h *Handler) selectIndex(w http.ResponseWriter, r *http.Request) {
	index, ok := parseIndex(w, r)
	if !ok {
		return
	}

	s, d, err := h.svc.SelectIndex(index)
	if err != nil {
		response.Error(w, r, statusOf(err), err.Error())
		return
	}

	response.JSON(w, r, http.StatusOK, response.NewSnapshot(s, d))
}

func (h *Handler) backup(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteBackup(&buf, h.svc.History()); err != nil {
		response.Error(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.BackupFileName))

	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write backup", "error", err)
	}
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	items, err := export.ReadBackup(r.Body)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	err = h.svc.RestoreHistory(r.Context(), items)
	if err != nil && !errors.Is(err, history.ErrPersist) {
		response.Error(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	response.JSON(w, r, http.StatusOK, mutationResponse{Count: len(h.svc.History()), Warning: warningOf(err)})
}

func parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid index")
		return 0, false
	}

	return index, true
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, history.ErrIndexOutOfRange), errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// warningOf turns a persistence failure into a non-blocking message.
func warningOf(err error) string {
	if errors.Is(err, history.ErrPersist) {
		return err.Error()
	}

	return ""
}
