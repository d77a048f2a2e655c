package export

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/cierres/internal/export"
	"github.com/MrJamesThe3rd/cierres/internal/http/response"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.kinds)
	r.Get("/{kind}", h.download)
}

func (h *Handler) kinds(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, export.Kinds)
}

// download renders into memory first so a failure still produces a proper
// status code.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	kind, err := export.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		response.Error(w, r, http.StatusNotFound, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Write(r.Context(), kind, &buf); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, export.ErrNoSnapshot) {
			status = http.StatusNotFound
		}

		response.Error(w, r, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", kind.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.svc.FileName(kind)))

	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write export", "kind", kind, "error", err)
	}
}
