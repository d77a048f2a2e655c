// Package history keeps the ordered list of processed snapshots, one per
// period, and persists it after every change.
package history

import (
	"fmt"
	"slices"

	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

// Store is the in-memory history. Periods are unique and entries keep their
// insertion position when replaced. Store is not safe for concurrent use;
// Service adds locking.
type Store struct {
	items []*snapshot.Snapshot
}

// NewStore builds a store from persisted items. Later duplicates of a period
// replace earlier ones in place.
func NewStore(items []*snapshot.Snapshot) *Store {
	s := &Store{}
	for _, it := range items {
		if it != nil {
			s.Upsert(it)
		}
	}

	return s
}

// Upsert replaces the snapshot with the same period at its current position,
// or appends it. It returns the position and whether an entry was replaced.
func (s *Store) Upsert(snap *snapshot.Snapshot) (int, bool) {
	if i := s.indexOf(snap.Period); i >= 0 {
		s.items[i] = snap
		return i, true
	}

	s.items = append(s.items, snap)

	return len(s.items) - 1, false
}

// Remove deletes the entry at index and returns it.
func (s *Store) Remove(index int) (*snapshot.Snapshot, error) {
	if index < 0 || index >= len(s.items) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(s.items))
	}

	removed := s.items[index]
	s.items = slices.Delete(s.items, index, index+1)

	return removed, nil
}

// At returns the entry at index.
func (s *Store) At(index int) (*snapshot.Snapshot, error) {
	if index < 0 || index >= len(s.items) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(s.items))
	}

	return s.items[index], nil
}

func (s *Store) FindByPeriod(period string) (*snapshot.Snapshot, bool) {
	if i := s.indexOf(period); i >= 0 {
		return s.items[i], true
	}

	return nil, false
}

// All returns a copy of the ordered entries. The snapshots themselves are
// shared; they are never mutated.
func (s *Store) All() []*snapshot.Snapshot {
	return slices.Clone(s.items)
}

// Replace swaps the whole content for items, deduplicated like NewStore.
func (s *Store) Replace(items []*snapshot.Snapshot) {
	s.items = NewStore(items).items
}

func (s *Store) Len() int {
	return len(s.items)
}

func (s *Store) indexOf(period string) int {
	return slices.IndexFunc(s.items, func(it *snapshot.Snapshot) bool { return it.Period == period })
}
