package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/cierres/internal/http/clients"
	"github.com/MrJamesThe3rd/cierres/internal/http/closing"
	"github.com/MrJamesThe3rd/cierres/internal/http/export"
	"github.com/MrJamesThe3rd/cierres/internal/http/history"
)

type Options struct {
	CORSOrigins []string
	Timeout     time.Duration
	Metrics     http.Handler
}

func New(
	opts Options,
	closingV1 *closing.Handler,
	historyV1 *history.Handler,
	exportV1 *export.Handler,
	clientsV1 *clients.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics)
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}

		r.Route("/closings", closingV1.Routes)
		r.Route("/snapshot", closingV1.SnapshotRoutes)
		r.Route("/history", historyV1.Routes)
		r.Route("/export", exportV1.Routes)

		r.Route("/clients", clientsV1.Routes)
	})

	return router
}
