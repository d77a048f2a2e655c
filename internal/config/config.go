package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// History backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendDrive    = "drive"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Cierres"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
		File   string `envconfig:"LOG_FILE"`
	}

	History struct {
		Backend string `envconfig:"HISTORY_BACKEND" default:"file"`
		Path    string `envconfig:"HISTORY_PATH" default:"data/CierresPro_Backup.json"`
	}

	Clients struct {
		Path string `envconfig:"CLIENTS_PATH" default:"data/clients.yaml"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"cierres"`
	}

	Drive struct {
		Credentials string `envconfig:"DRIVE_CREDENTIALS"`
		Folder      string `envconfig:"DRIVE_FOLDER" default:"CierresPro_Data"`
		File        string `envconfig:"DRIVE_FILE" default:"CierresPro_Backup.json"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins    []string      `envconfig:"CORS_ORIGINS" default:"*"`
		UploadMaxBytes int64         `envconfig:"UPLOAD_MAX_BYTES" default:"33554432"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	cfg.History.Backend = strings.ToLower(strings.TrimSpace(cfg.History.Backend))

	switch cfg.History.Backend {
	case BackendFile, BackendPostgres, BackendDrive:
	default:
		return nil, fmt.Errorf("unknown HISTORY_BACKEND %q", cfg.History.Backend)
	}

	return &cfg, nil
}
