// Package drive keeps the closing history as a JSON backup inside a Google
// Drive folder, so several machines can share it.
package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/MrJamesThe3rd/cierres/internal/export"
	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

const (
	DefaultFolder = "CierresPro_Data"
	folderMime    = "application/vnd.google-apps.folder"
	jsonMime      = "application/json"
)

var ErrNoCredentials = errors.New("drive credentials file not configured")

type Config struct {
	CredentialsFile string
	Folder          string
	File            string
}

// Store reads and writes one backup file. The folder is created on first save
// and its ID cached for the lifetime of the Store.
type Store struct {
	svc    *drive.Service
	folder string
	file   string

	mu       sync.Mutex
	folderID string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.CredentialsFile == "" {
		return nil, ErrNoCredentials
	}

	svc, err := drive.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsFile), option.WithScopes(drive.DriveFileScope))
	if err != nil {
		return nil, fmt.Errorf("creating drive client: %w", err)
	}

	return NewWithService(svc, cfg), nil
}

// NewWithService wraps an already configured client.
func NewWithService(svc *drive.Service, cfg Config) *Store {
	folder := cfg.Folder
	if folder == "" {
		folder = DefaultFolder
	}

	file := cfg.File
	if file == "" {
		file = export.BackupFileName
	}

	return &Store{svc: svc, folder: folder, file: file}
}

// Load returns an empty history when neither the folder nor the file exist.
func (s *Store) Load(ctx context.Context) ([]*snapshot.Snapshot, error) {
	folderID, err := s.findFolder(ctx)
	if err != nil {
		return nil, err
	}

	if folderID == "" {
		return nil, nil
	}

	fileID, err := s.findFile(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if fileID == "" {
		return nil, nil
	}

	resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", s.file, err)
	}
	defer resp.Body.Close()

	items, err := export.ReadBackup(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.file, err)
	}

	slog.Info("history loaded from drive", "file", s.file, "snapshots", len(items))

	return items, nil
}

func (s *Store) Save(ctx context.Context, items []*snapshot.Snapshot) error {
	var buf bytes.Buffer
	if err := export.WriteBackup(&buf, items); err != nil {
		return err
	}

	folderID, err := s.ensureFolder(ctx)
	if err != nil {
		return err
	}

	fileID, err := s.findFile(ctx, folderID)
	if err != nil {
		return err
	}

	if fileID == "" {
		meta := &drive.File{Name: s.file, Parents: []string{folderID}, MimeType: jsonMime}
		if _, err := s.svc.Files.Create(meta).Media(&buf).Context(ctx).Do(); err != nil {
			return fmt.Errorf("uploading %s: %w", s.file, err)
		}

		return nil
	}

	if _, err := s.svc.Files.Update(fileID, &drive.File{}).Media(&buf).Context(ctx).Do(); err != nil {
		return fmt.Errorf("updating %s: %w", s.file, err)
	}

	return nil
}

func (s *Store) findFolder(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.folderID != "" {
		return s.folderID, nil
	}

	id, err := s.lookup(ctx, folderQuery(s.folder))
	if err != nil {
		return "", fmt.Errorf("finding folder %s: %w", s.folder, err)
	}

	s.folderID = id

	return id, nil
}

func (s *Store) ensureFolder(ctx context.Context) (string, error) {
	id, err := s.findFolder(ctx)
	if err != nil || id != "" {
		return id, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.folderID != "" {
		return s.folderID, nil
	}

	created, err := s.svc.Files.Create(&drive.File{Name: s.folder, MimeType: folderMime}).
		Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("creating folder %s: %w", s.folder, err)
	}

	s.folderID = created.Id

	return created.Id, nil
}

func (s *Store) findFile(ctx context.Context, folderID string) (string, error) {
	id, err := s.lookup(ctx, fileQuery(s.file, folderID))
	if err != nil {
		return "", fmt.Errorf("finding %s: %w", s.file, err)
	}

	return id, nil
}

func (s *Store) lookup(ctx context.Context, q string) (string, error) {
	list, err := s.svc.Files.List().Q(q).Spaces("drive").Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", err
	}

	if len(list.Files) == 0 {
		return "", nil
	}

	return list.Files[0].Id, nil
}

func folderQuery(name string) string {
	return fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escape(name), folderMime)
}

func fileQuery(name, folderID string) string {
	return fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", escape(name), escape(folderID))
}

// escape quotes a literal for the Drive search grammar.
func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
