package closing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/cierres/internal/closing"
	"github.com/MrJamesThe3rd/cierres/internal/http/response"
	"github.com/MrJamesThe3rd/cierres/internal/ingest"
	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

type Handler struct {
	svc            *closing.Service
	uploadMaxBytes int64
}

func NewHandler(svc *closing.Service, uploadMaxBytes int64) *Handler {
	return &Handler{svc: svc, uploadMaxBytes: uploadMaxBytes}
}

// Routes mounts the upload endpoint.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.ingest)
}

// SnapshotRoutes mounts the read-only views of the current snapshot.
func (h *Handler) SnapshotRoutes(r chi.Router) {
	r.Get("/", h.current)
	r.Get("/rows", h.rows)
	r.Get("/options", h.options)
	r.Get("/summary", h.summary)
	r.Get("/clients", h.clients)
	r.Get("/centers/{name}", h.center)
	r.Get("/lines/{name}", h.line)
}

type ingestResponse struct {
	Snapshot           response.Snapshot      `json:"snapshot"`
	Index              int                    `json:"index"`
	Replaced           bool                   `json:"replaced"`
	Warnings           []string               `json:"warnings"`
	ApproximateColumns []ingest.Match         `json:"approximate_columns"`
	Discarded          map[ingest.Discard]int `json:"discarded"`
	Accepted           int                    `json:"accepted"`
}

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxBytes)

	if err := r.ParseMultipartForm(h.uploadMaxBytes); err != nil {
		status := http.StatusBadRequest

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}

		response.Error(w, r, status, "failed to parse form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	res, err := h.svc.Ingest(r.Context(), header.Filename, file)
	if err != nil {
		response.Error(w, r, ingestStatus(err), err.Error())
		return
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	response.JSON(w, r, http.StatusCreated, ingestResponse{
		Snapshot:           response.NewSnapshot(res.Snapshot, res.Derived),
		Index:              res.Index,
		Replaced:           res.Replaced,
		Warnings:           warnings,
		ApproximateColumns: res.Report.Approximate,
		Discarded:          res.Report.Discarded,
		Accepted:           res.Report.Accepted,
	})
}

// ingestStatus maps ingestion failures: anything but cancellation is a
// problem with the uploaded sheet.
func ingestStatus(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}

	return http.StatusUnprocessableEntity
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	s, d, ok := h.load(w, r)
	if !ok {
		return
	}

	response.JSON(w, r, http.StatusOK, response.NewSnapshot(s, d))
}

func (h *Handler) rows(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.load(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	filter := snapshot.Filter{
		Center:       q.Get("center"),
		BusinessLine: q.Get("line"),
		Status:       q.Get("status"),
		Client:       q.Get("client"),
	}

	if v := q.Get("low_performance"); v != "" {
		low, err := strconv.ParseBool(v)
		if err != nil {
			response.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid low_performance %q", v))
			return
		}

		filter.LowPerformance = low
	}

	response.JSON(w, r, http.StatusOK, s.View(filter))
}

func (h *Handler) options(w http.ResponseWriter, r *http.Request) {
	if s, _, ok := h.load(w, r); ok {
		response.JSON(w, r, http.StatusOK, snapshot.FilterOptions(s.Rows))
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if s, _, ok := h.load(w, r); ok {
		response.JSON(w, r, http.StatusOK, snapshot.Summarize(s))
	}
}

func (h *Handler) clients(w http.ResponseWriter, r *http.Request) {
	if s, _, ok := h.load(w, r); ok {
		response.JSON(w, r, http.StatusOK, snapshot.Clients(s.Rows))
	}
}

func (h *Handler) center(w http.ResponseWriter, r *http.Request) {
	h.detail(w, r, (*snapshot.Snapshot).CenterDetail)
}

func (h *Handler) line(w http.ResponseWriter, r *http.Request) {
	h.detail(w, r, (*snapshot.Snapshot).BusinessLineDetail)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request, find func(*snapshot.Snapshot, string) (snapshot.Detail, bool)) {
	s, _, ok := h.load(w, r)
	if !ok {
		return
	}

	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "invalid name")
		return
	}

	d, found := find(s, name)
	if !found {
		response.Error(w, r, http.StatusNotFound, fmt.Sprintf("%q not found in %s", name, s.Period))
		return
	}

	response.JSON(w, r, http.StatusOK, d)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*snapshot.Snapshot, snapshot.Derived, bool) {
	s, d, ok := h.svc.Current()
	if !ok {
		slog.Debug("no snapshot loaded", "path", r.URL.Path)
		response.Error(w, r, http.StatusNotFound, "no closing loaded")
	}

	return s, d, ok
}
