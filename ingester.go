package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drewmad/claimguardian-platform-sub005/logging"
	"github.com/drewmad/claimguardian-platform-sub005/merge"
	"github.com/drewmad/claimguardian-platform-sub005/metrics"
	"github.com/drewmad/claimguardian-platform-sub005/normalize"
	"github.com/drewmad/claimguardian-platform-sub005/source"
)

// Ingester drives one run of the pipeline: stream each source file into
// the raw store, normalize the rows into typed candidates, and merge
// the candidates into the current parcel table.
type Ingester struct {
	config     *Config
	rawStore   *RawStore
	engine     *merge.Engine
	checkpoint *CheckpointManager
	logger     *logging.ComponentLogger
	metrics    *metrics.Metrics

	mu    sync.RWMutex
	stats IngestStats
}

// IngestStats tracks cumulative progress across the run
type IngestStats struct {
	FilesIngested     int       `json:"files_ingested"`
	RawRecordsStored  int64     `json:"raw_records_stored"`
	DuplicatesSkipped int64     `json:"duplicates_skipped"`
	RecordsRejected   int64     `json:"records_rejected"`
	ParcelsCreated    int64     `json:"parcels_created"`
	ParcelsUpdated    int64     `json:"parcels_updated"`
	ParcelsUnchanged  int64     `json:"parcels_unchanged"`
	ParcelsFailed     int64     `json:"parcels_failed"`
	CountyUnresolved  int64     `json:"county_unresolved"`
	LastBatchID       string    `json:"last_batch_id"`
	LastActivity      time.Time `json:"last_activity"`
}

// NewIngester creates a new ingester
func NewIngester(config *Config, rawStore *RawStore, engine *merge.Engine, checkpoint *CheckpointManager, logger *logging.ComponentLogger, m *metrics.Metrics) *Ingester {
	return &Ingester{
		config:     config,
		rawStore:   rawStore,
		engine:     engine,
		checkpoint: checkpoint,
		logger:     logger,
		metrics:    m,
	}
}

// GetStats returns a snapshot of ingestion progress
func (ing *Ingester) GetStats() IngestStats {
	ing.mu.RLock()
	defer ing.mu.RUnlock()
	return ing.stats
}

// IngestFile streams one export file through the pipeline. The source
// name is the file's base name, which keys the raw store and the
// resume checkpoint.
func (ing *Ingester) IngestFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sourceName := filepath.Base(path)
	start := time.Now()

	reader, err := source.Open(sourceName, path)
	if err != nil {
		return err
	}
	defer reader.Close()

	resumeFrom, err := ing.checkpoint.Load(sourceName)
	if err != nil {
		return err
	}
	if resumeFrom > 0 {
		log.Printf("⏩ Resuming %s from row %d", sourceName, resumeFrom)
	}

	var (
		rowNum      int64
		fileStored  int64
		fileSkipped int64
		batch       []*source.RawRecord
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		stored, skipped, err := ing.processBatch(ctx, sourceName, batch)
		if err != nil {
			return err
		}
		fileStored += stored
		fileSkipped += skipped
		if err := ing.checkpoint.Save(sourceName, rowNum); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", sourceName, err)
		}

		rowNum++
		if rowNum <= resumeFrom {
			continue
		}

		batch = append(batch, rec)
		if len(batch) >= ing.config.Performance.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}

	if err := ing.checkpoint.Clear(sourceName); err != nil {
		return err
	}

	ing.mu.Lock()
	ing.stats.FilesIngested++
	ing.mu.Unlock()

	elapsed := time.Since(start)
	ing.metrics.RecordFileIngestDuration(elapsed)
	ing.logger.LogFilePerformance(logging.FileMetrics{
		File:              sourceName,
		TotalRecords:      rowNum,
		DuplicatesSkipped: fileSkipped,
		RecordsPerSecond:  float64(rowNum) / elapsed.Seconds(),
		Elapsed:           elapsed,
	})
	log.Printf("✅ Ingested %s: %d rows in %v (%d stored, %d duplicates skipped)",
		sourceName, rowNum, elapsed.Round(time.Millisecond), fileStored, fileSkipped)

	return nil
}

// processBatch lands one batch in the raw store, normalizes it, and
// merges the surviving candidates.
func (ing *Ingester) processBatch(ctx context.Context, sourceName string, batch []*source.RawRecord) (stored, skipped int64, err error) {
	ing.metrics.SetCurrentBatchSize(len(batch))

	stored, skipped, err = ing.rawStore.StoreBatch(ctx, batch)
	if err != nil {
		return 0, 0, err
	}
	ing.metrics.RecordRawIngested(sourceName, stored)
	ing.metrics.RecordDuplicatesSkipped(sourceName, skipped)

	normStart := time.Now()
	candidates := make([]*normalize.Candidate, 0, len(batch))
	var rejected int64
	for _, rec := range batch {
		c, err := normalize.Normalize(rec.Attributes)
		if err != nil {
			rejected++
			ing.metrics.RecordRejected(sourceName)
			ing.logger.LogRecordRejected(sourceName, rec.SourceID, err)
			continue
		}
		candidates = append(candidates, c)
	}
	ing.metrics.RecordNormalizeDuration(time.Since(normStart))

	batchID := uuid.NewString()
	mergeStart := time.Now()
	report, err := ing.engine.MergeBatch(ctx, batchID, candidates)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to merge batch %s: %w", batchID, err)
	}
	mergeElapsed := time.Since(mergeStart)

	ing.metrics.RecordBatchMergeDuration(mergeElapsed)
	ing.metrics.RecordMergeOutcome("created", report.Created)
	ing.metrics.RecordMergeOutcome("updated", report.Updated)
	ing.metrics.RecordMergeOutcome("unchanged", report.Unchanged)
	ing.metrics.RecordMergeOutcome("failed", report.Failed)
	ing.metrics.RecordUnresolved(report.Unresolved)

	ing.logger.LogBatchMerged(batchID, report.Created, report.Updated, report.Unchanged, report.Failed, mergeElapsed)
	for _, f := range report.Failures {
		ing.logger.Error().
			Str("batch_id", batchID).
			Str("parcel_id", f.ParcelID).
			Int("county_number", f.CountyNumber).
			Str("error", f.Error).
			Msg("Parcel merge failed")
	}

	ing.mu.Lock()
	ing.stats.RawRecordsStored += stored
	ing.stats.DuplicatesSkipped += skipped
	ing.stats.RecordsRejected += rejected
	ing.stats.ParcelsCreated += int64(report.Created)
	ing.stats.ParcelsUpdated += int64(report.Updated)
	ing.stats.ParcelsUnchanged += int64(report.Unchanged)
	ing.stats.ParcelsFailed += int64(report.Failed)
	ing.stats.CountyUnresolved += int64(report.Unresolved)
	ing.stats.LastBatchID = batchID
	ing.stats.LastActivity = time.Now()
	ing.mu.Unlock()

	return stored, skipped, nil
}
