package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=history
type Repository interface {
	Load(ctx context.Context) ([]*snapshot.Snapshot, error)
	Save(ctx context.Context, items []*snapshot.Snapshot) error
}

// Service guards a Store and writes it through to a Repository after every
// mutation. A failed write is returned as a *PersistError; the in-memory
// change is kept either way.
type Service struct {
	repo Repository

	mu    sync.RWMutex
	store *Store
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, store: NewStore(nil)}
}

// Load replaces the in-memory history with the repository's content.
func (s *Service) Load(ctx context.Context) error {
	items, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	s.mu.Lock()
	s.store = NewStore(items)
	n := s.store.Len()
	s.mu.Unlock()

	slog.Info("history loaded", "snapshots", n)

	return nil
}

// Upsert stores snap under its period. It returns the position of the entry
// and whether a previous snapshot of the same period was replaced.
func (s *Service) Upsert(ctx context.Context, snap *snapshot.Snapshot) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, replaced := s.store.Upsert(snap)

	return index, replaced, s.persist(ctx, "upsert")
}

// Remove deletes the entry at index.
func (s *Service) Remove(ctx context.Context, index int) (*snapshot.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.store.Remove(index)
	if err != nil {
		return nil, err
	}

	return removed, s.persist(ctx, "remove")
}

// Restore replaces the whole history, typically from a backup.
func (s *Service) Restore(ctx context.Context, items []*snapshot.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Replace(items)

	return s.persist(ctx, "restore")
}

func (s *Service) FindByPeriod(period string) (*snapshot.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.FindByPeriod(period)
}

func (s *Service) Get(index int) (*snapshot.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.At(index)
}

func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.Len()
}

// List returns the entries in insertion order.
func (s *Service) List() []*snapshot.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.All()
}

// persist must be called with mu held.
func (s *Service) persist(ctx context.Context, op string) error {
	if err := s.repo.Save(ctx, s.store.All()); err != nil {
		slog.Error("failed to persist history", "op", op, "error", err)
		return &PersistError{Op: op, Err: err}
	}

	return nil
}
