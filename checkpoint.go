package main

import (
	"database/sql"
	"fmt"
	"time"
)

// CheckpointManager tracks how far each source file has been ingested
// so an interrupted run can resume without re-reading rows already in
// the raw store.
type CheckpointManager struct {
	db *sql.DB
}

// NewCheckpointManager creates a new checkpoint manager
func NewCheckpointManager(db *sql.DB) *CheckpointManager {
	return &CheckpointManager{db: db}
}

// Load retrieves the last ingested row number for a source
func (cm *CheckpointManager) Load(source string) (int64, error) {
	var lastRow int64

	err := cm.db.QueryRow(`
		SELECT last_row
		FROM ingest_checkpoints
		WHERE source = $1
	`, source).Scan(&lastRow)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil // No checkpoint yet, start from the first row
		}
		return 0, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	return lastRow, nil
}

// Save records the last ingested row number for a source
func (cm *CheckpointManager) Save(source string, lastRow int64) error {
	_, err := cm.db.Exec(`
		INSERT INTO ingest_checkpoints (source, last_row, last_processed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (source) DO UPDATE
		SET last_row = EXCLUDED.last_row,
		    last_processed_at = EXCLUDED.last_processed_at
	`, source, lastRow, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	return nil
}

// Clear removes the checkpoint for a fully ingested source
func (cm *CheckpointManager) Clear(source string) error {
	if _, err := cm.db.Exec(`DELETE FROM ingest_checkpoints WHERE source = $1`, source); err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}
	return nil
}

// GetStatus returns checkpoint status information for a source
func (cm *CheckpointManager) GetStatus(source string) (lastRow int64, lastProcessed time.Time, err error) {
	err = cm.db.QueryRow(`
		SELECT last_row, last_processed_at
		FROM ingest_checkpoints
		WHERE source = $1
	`, source).Scan(&lastRow, &lastProcessed)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, time.Time{}, nil
		}
		return 0, time.Time{}, fmt.Errorf("failed to get checkpoint status: %w", err)
	}

	return lastRow, lastProcessed, nil
}
