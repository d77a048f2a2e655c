// Package app wires configuration into the services shared by every entry
// point.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/cierres/internal/clients"
	"github.com/MrJamesThe3rd/cierres/internal/closing"
	"github.com/MrJamesThe3rd/cierres/internal/config"
	"github.com/MrJamesThe3rd/cierres/internal/database"
	"github.com/MrJamesThe3rd/cierres/internal/export"
	"github.com/MrJamesThe3rd/cierres/internal/history"
	"github.com/MrJamesThe3rd/cierres/internal/history/drive"
	"github.com/MrJamesThe3rd/cierres/internal/history/filestore"
	"github.com/MrJamesThe3rd/cierres/internal/history/store"
	"github.com/MrJamesThe3rd/cierres/internal/ingest"
	"github.com/MrJamesThe3rd/cierres/internal/metrics"
)

type App struct {
	Closing *closing.Service
	Clients *clients.Service
	Export  *export.Service
	Metrics *metrics.Metrics

	db *sql.DB
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Metrics: metrics.New()}

	repo, err := a.repository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	hist := history.NewService(repo)
	if err := hist.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.Closing = closing.NewService(ingest.NewEngine(), hist, a.Metrics)
	a.Export = export.NewService(a.Closing)

	a.Clients, err = clients.NewService(cfg.Clients.Path)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) repository(ctx context.Context, cfg *config.Config) (history.Repository, error) {
	slog.Info("using history backend", "backend", cfg.History.Backend)

	switch cfg.History.Backend {
	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.ConnectionString())
		if err != nil {
			return nil, err
		}

		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}

		a.db = db

		return store.New(db), nil
	case config.BackendDrive:
		return drive.New(ctx, drive.Config{
			CredentialsFile: cfg.Drive.Credentials,
			Folder:          cfg.Drive.Folder,
			File:            cfg.Drive.File,
		})
	case config.BackendFile:
		return filestore.New(cfg.History.Path), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
