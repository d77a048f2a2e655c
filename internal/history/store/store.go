// Package store keeps the closing history in PostgreSQL, one row per period.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Load(ctx context.Context) ([]*snapshot.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM closing_snapshots ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var items []*snapshot.Snapshot

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}

		snap, err := decode(data)
		if err != nil {
			return nil, err
		}

		items = append(items, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}

	return items, nil
}

// Save replaces the stored history with items inside one transaction, so the
// table always mirrors a complete history.
func (s *Store) Save(ctx context.Context, items []*snapshot.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM closing_snapshots`); err != nil {
		return fmt.Errorf("clearing snapshots: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO closing_snapshots (position, period, data, created_at)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, snap := range items {
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("encoding snapshot %q: %w", snap.Period, err)
		}

		if _, err := stmt.ExecContext(ctx, i, snap.Period, data, snap.CreatedAt); err != nil {
			return fmt.Errorf("inserting snapshot %q: %w", snap.Period, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshots: %w", err)
	}

	return nil
}

func decode(data []byte) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	return snapshot.Complete(&snap), nil
}
