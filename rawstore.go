package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/drewmad/claimguardian-platform-sub005/source"
)

// RawStore is the append-only landing zone for ingested rows. Rows are
// never updated in place; a changed row from a later export lands as a
// new record with a different content hash.
type RawStore struct {
	db *sql.DB
}

// NewRawStore creates a new raw store
func NewRawStore(db *sql.DB) *RawStore {
	return &RawStore{db: db}
}

// StoreBatch writes a batch of raw records inside one transaction and
// returns how many were stored and how many were skipped as exact
// duplicates of previously ingested rows.
func (s *RawStore) StoreBatch(ctx context.Context, records []*source.RawRecord) (stored, skipped int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO raw_parcel_records (source, source_id, content_hash, attributes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source, source_id, content_hash) DO NOTHING
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare raw insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		attrs, err := json.Marshal(rec.Attributes)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to encode attributes for %s: %w", rec.SourceID, err)
		}

		result, err := stmt.ExecContext(ctx, rec.Source, rec.SourceID, rec.ContentHash, attrs)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to store raw record %s: %w", rec.SourceID, err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return 0, 0, fmt.Errorf("failed to check rows affected: %w", err)
		}
		if n == 1 {
			stored++
		} else {
			skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit raw batch: %w", err)
	}

	return stored, skipped, nil
}

// Count returns the number of raw records stored for a source.
func (s *RawStore) Count(ctx context.Context, sourceName string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM raw_parcel_records WHERE source = $1`, sourceName).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count raw records: %w", err)
	}
	return n, nil
}
