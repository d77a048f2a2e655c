// Package filestore persists the history as a JSON backup file on local disk.
package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MrJamesThe3rd/cierres/internal/export"
	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Load returns an empty history when the file does not exist yet.
func (s *Store) Load(_ context.Context) ([]*snapshot.Snapshot, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	items, err := export.ReadBackup(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	return items, nil
}

// Save replaces the file atomically: readers see either the old or the new
// content, never a partial write.
func (s *Store) Save(ctx context.Context, items []*snapshot.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteBackup(&buf, items); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		cleanup()
		return fmt.Errorf("writing history: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("syncing history: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing history: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing history file: %w", err)
	}

	return nil
}
