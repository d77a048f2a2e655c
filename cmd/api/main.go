package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/cierres/internal/app"
	"github.com/MrJamesThe3rd/cierres/internal/config"
	cierresHttp "github.com/MrJamesThe3rd/cierres/internal/http"
	clientsHandler "github.com/MrJamesThe3rd/cierres/internal/http/clients"
	closingHandler "github.com/MrJamesThe3rd/cierres/internal/http/closing"
	exportHandler "github.com/MrJamesThe3rd/cierres/internal/http/export"
	historyHandler "github.com/MrJamesThe3rd/cierres/internal/http/history"
	"github.com/MrJamesThe3rd/cierres/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var (
		closingH = closingHandler.NewHandler(a.Closing, cfg.Server.UploadMaxBytes)
		historyH = historyHandler.NewHandler(a.Closing)
		exportH  = exportHandler.NewHandler(a.Export)
		clientsH = clientsHandler.NewHandler(a.Clients, a.Closing)
	)

	router := cierresHttp.New(cierresHttp.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Timeout:     cfg.Server.Timeout,
		Metrics:     a.Metrics.Handler(),
	}, closingH, historyH, exportH, clientsH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
