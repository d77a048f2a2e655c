package clients

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/cierres/internal/clients"
	"github.com/MrJamesThe3rd/cierres/internal/closing"
	"github.com/MrJamesThe3rd/cierres/internal/http/response"
)

type Handler struct {
	svc     *clients.Service
	closing *closing.Service
}

func NewHandler(svc *clients.Service, closingSvc *closing.Service) *Handler {
	return &Handler{svc: svc, closing: closingSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.With(middleware.AllowContentType("application/json")).Post("/", h.create)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/dashboard", h.dashboard)
}

type createClientRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.svc.List())
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.Add(req.Name, req.Color)
	if err != nil {
		response.Error(w, r, statusOf(err), err.Error())
		return
	}

	response.JSON(w, r, http.StatusCreated, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Remove(chi.URLParam(r, "id")); err != nil {
		response.Error(w, r, statusOf(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, statusOf(err), err.Error())
		return
	}

	s, _, ok := h.closing.Current()
	if !ok {
		response.Error(w, r, http.StatusNotFound, "no closing loaded")
		return
	}

	response.JSON(w, r, http.StatusOK, clients.BuildDashboard(s, c))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, clients.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, clients.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, clients.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
