// Package merge applies typed parcel candidates to the canonical store
// with change detection, history archival and county enrichment. All
// mutation of florida_parcels and parcel_history goes through this
// package; nothing else writes those tables.
package merge

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/drewmad/claimguardian-platform-sub005/county"
	"github.com/drewmad/claimguardian-platform-sub005/normalize"
)

// parcelColumns is the canonical column list, shared by the insert,
// select, update and history-snapshot statements so they cannot drift.
var parcelColumns = []string{
	"co_no", "parcel_id", "asmnt_yr", "dor_uc", "jv",
	"av_sd", "av_nsd", "tv_sd", "tv_nsd",
	"lnd_val", "bldg_val", "tot_val",
	"act_yr_blt", "eff_yr_blt", "tot_lvg_ar", "lnd_sqfoot",
	"no_buldng", "no_res_unt",
	"sale_prc1", "sale_yr1", "sale_mo1", "sale_date1",
	"sale_prc2", "sale_yr2", "sale_mo2",
	"own_name", "own_addr1", "own_addr2", "own_city", "own_state", "own_zipcd",
	"phy_addr1", "phy_addr2", "phy_city", "phy_zipcd",
	"s_legal", "twn", "rng", "sec",
	"county_fips", "county_name",
}

// Engine merges candidate batches into the canonical store. Each
// candidate gets its own transaction, so one bad record never takes
// down the batch and a cancelled run stops cleanly between records.
type Engine struct {
	db         *sql.DB
	maxRetries int
}

// NewEngine creates a merge engine.
func NewEngine(db *sql.DB, maxRetries int) *Engine {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Engine{db: db, maxRetries: maxRetries}
}

// MergeBatch applies candidates in order and returns the batch report.
// Per-record failures are collected, never raised; the only error
// returned is context cancellation between records.
func (e *Engine) MergeBatch(ctx context.Context, batchID string, candidates []*normalize.Candidate) (*Report, error) {
	report := &Report{BatchID: batchID}

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		enriched := e.enrich(cand)
		if enriched.unresolved {
			report.Unresolved++
		}

		outcome, err := e.mergeWithRetry(ctx, cand, enriched)
		if err != nil {
			report.fail(cand.ParcelID, cand.CountyNumber, err)
			continue
		}
		report.record(outcome)
	}

	return report, nil
}

// enrichment is the resolved county identity attached to a candidate.
type enrichment struct {
	fips       *int
	name       *string
	unresolved bool
}

// enrich derives the county reference. The numeric DOR code is
// authoritative; free-text address matching is best-effort and only
// consulted when no valid code is present. Resolution failure never
// fails the merge: the parcel stores a null county reference and stays
// eligible for a later re-enrichment pass.
func (e *Engine) enrich(c *normalize.Candidate) enrichment {
	if ref, ok := county.ByNumber(c.CountyNumber); ok {
		return enrichment{fips: &ref.FIPS, name: &ref.Name}
	}

	addr := joinAddress(c.PhysicalAddress1, c.PhysicalCity)
	if ref, conf := county.FromAddress(addr); conf != county.MatchNone {
		return enrichment{fips: &ref.FIPS, name: &ref.Name}
	}

	return enrichment{unresolved: true}
}

func joinAddress(parts ...*string) string {
	var kept []string
	for _, p := range parts {
		if p != nil && *p != "" {
			kept = append(kept, *p)
		}
	}
	return strings.Join(kept, ", ")
}

// mergeWithRetry retries write-write races with backoff; other errors
// surface immediately.
func (e *Engine) mergeWithRetry(ctx context.Context, c *normalize.Candidate, enr enrichment) (Outcome, error) {
	var lastErr error
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			case <-ctx.Done():
				return OutcomeFailed, ctx.Err()
			}
		}

		outcome, err := e.mergeOne(ctx, c, enr)
		if err == nil {
			return outcome, nil
		}
		if !isRetryable(err) {
			return OutcomeFailed, err
		}
		lastErr = err
	}
	return OutcomeFailed, fmt.Errorf("merge retries exhausted: %w", lastErr)
}

// mergeOne applies a single candidate inside one transaction:
// atomic insert first; on conflict, lock the existing row, compare,
// and archive-then-update only when something actually changed.
func (e *Engine) mergeOne(ctx context.Context, c *normalize.Candidate, enr enrichment) (Outcome, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	created, err := e.tryInsert(ctx, tx, c, enr)
	if err != nil {
		return OutcomeFailed, err
	}
	if created {
		if err := tx.Commit(); err != nil {
			return OutcomeFailed, fmt.Errorf("failed to commit insert: %w", err)
		}
		return OutcomeCreated, nil
	}

	existing, existingEnr, err := e.lockExisting(ctx, tx, c.CountyNumber, c.ParcelID)
	if err != nil {
		return OutcomeFailed, err
	}

	if c.Equal(existing) && eqIntPtr(enr.fips, existingEnr.fips) {
		// Byte-identical re-merge: no spurious history snapshot.
		return OutcomeUnchanged, nil
	}

	if err := e.archiveCurrent(ctx, tx, c.CountyNumber, c.ParcelID); err != nil {
		return OutcomeFailed, err
	}
	if err := e.updateCurrent(ctx, tx, c, enr); err != nil {
		return OutcomeFailed, err
	}

	if err := tx.Commit(); err != nil {
		return OutcomeFailed, fmt.Errorf("failed to commit update: %w", err)
	}
	return OutcomeUpdated, nil
}

// tryInsert is the atomic insert-or-nothing primitive. The uniqueness
// constraint on (co_no, parcel_id) is the authority; a concurrent
// creator simply makes this a no-op and the caller falls through to
// the update path.
func (e *Engine) tryInsert(ctx context.Context, tx *sql.Tx, c *normalize.Candidate, enr enrichment) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO florida_parcels (%s, created_at, updated_at)
		VALUES (%s, now(), now())
		ON CONFLICT (co_no, parcel_id) DO NOTHING
	`, strings.Join(parcelColumns, ", "), placeholders(len(parcelColumns)))

	res, err := tx.ExecContext(ctx, query, candidateArgs(c, enr)...)
	if err != nil {
		return false, fmt.Errorf("failed to insert parcel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n == 1, nil
}

// lockExisting reads the current canonical row under FOR UPDATE so the
// compare/archive/update sequence is serialized per natural key.
func (e *Engine) lockExisting(ctx context.Context, tx *sql.Tx, countyNumber int, parcelID string) (*normalize.Candidate, enrichment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM florida_parcels
		WHERE co_no = $1 AND parcel_id = $2
		FOR UPDATE
	`, strings.Join(parcelColumns, ", "))

	c := &normalize.Candidate{}
	var enr enrichment

	err := tx.QueryRowContext(ctx, query, countyNumber, parcelID).Scan(
		&c.CountyNumber, &c.ParcelID, &c.AssessmentYear, &c.DORUseCode, &c.JustValue,
		&c.AssessedValueSD, &c.AssessedValueNSD, &c.TaxableValueSD, &c.TaxableValueNSD,
		&c.LandValue, &c.BuildingValue, &c.TotalValue,
		&c.ActualYearBuilt, &c.EffectiveYearBuilt, &c.TotalLivingArea, &c.LandSqFoot,
		&c.NumBuildings, &c.NumResidentialUnits,
		&c.SalePrice1, &c.SaleYear1, &c.SaleMonth1, &c.SaleDate1,
		&c.SalePrice2, &c.SaleYear2, &c.SaleMonth2,
		&c.OwnerName, &c.OwnerAddress1, &c.OwnerAddress2, &c.OwnerCity, &c.OwnerState, &c.OwnerZip,
		&c.PhysicalAddress1, &c.PhysicalAddress2, &c.PhysicalCity, &c.PhysicalZip,
		&c.LegalDescription, &c.Township, &c.Range, &c.Section,
		&enr.fips, &enr.name,
	)
	if err != nil {
		return nil, enrichment{}, fmt.Errorf("failed to lock existing parcel: %w", err)
	}
	return c, enr, nil
}

// archiveCurrent snapshots the current canonical row into
// parcel_history before it is overwritten. Versions must be the
// gapless sequence 1..max; a gap means an earlier snapshot was lost
// and ingestion halts for this key.
func (e *Engine) archiveCurrent(ctx context.Context, tx *sql.Tx, countyNumber int, parcelID string) error {
	var maxVersion, count int64
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0), COUNT(*)
		FROM parcel_history
		WHERE co_no = $1 AND parcel_id = $2
	`, countyNumber, parcelID).Scan(&maxVersion, &count)
	if err != nil {
		return fmt.Errorf("failed to read history versions: %w", err)
	}

	next, err := nextVersion(maxVersion, count)
	if err != nil {
		return versionGapError(countyNumber, parcelID, maxVersion, count)
	}

	cols := strings.Join(parcelColumns, ", ")
	query := fmt.Sprintf(`
		INSERT INTO parcel_history (%s, version, archived_at)
		SELECT %s, $3, now()
		FROM florida_parcels
		WHERE co_no = $1 AND parcel_id = $2
	`, cols, cols)

	if _, err := tx.ExecContext(ctx, query, countyNumber, parcelID, next); err != nil {
		return fmt.Errorf("failed to archive parcel snapshot: %w", err)
	}
	return nil
}

// nextVersion computes the next history version and detects gaps: a
// gapless sequence 1..max has exactly max rows.
func nextVersion(maxVersion, count int64) (int64, error) {
	if maxVersion != count {
		return 0, ErrHistoryVersionGap
	}
	return maxVersion + 1, nil
}

// updateCurrent overwrites the canonical row with candidate values.
func (e *Engine) updateCurrent(ctx context.Context, tx *sql.Tx, c *normalize.Candidate, enr enrichment) error {
	assigns := make([]string, 0, len(parcelColumns))
	for i, col := range parcelColumns {
		assigns = append(assigns, fmt.Sprintf("%s = $%d", col, i+1))
	}

	query := fmt.Sprintf(`
		UPDATE florida_parcels
		SET %s, updated_at = now()
		WHERE co_no = $1 AND parcel_id = $2
	`, strings.Join(assigns, ", "))

	res, err := tx.ExecContext(ctx, query, candidateArgs(c, enr)...)
	if err != nil {
		return fmt.Errorf("failed to update parcel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("expected to update 1 parcel row, updated %d", n)
	}
	return nil
}

// ReenrichUnresolved re-runs county resolution over parcels with a
// null county reference. Idempotent and safe to re-run at any time.
func (e *Engine) ReenrichUnresolved(ctx context.Context) (int, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT co_no, parcel_id, phy_addr1, phy_city
		FROM florida_parcels
		WHERE county_fips IS NULL
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to query unresolved parcels: %w", err)
	}
	defer rows.Close()

	type target struct {
		countyNumber int
		parcelID     string
		ref          county.Reference
	}
	var targets []target

	for rows.Next() {
		var (
			coNo     int
			parcelID string
			addr     *string
			city     *string
		)
		if err := rows.Scan(&coNo, &parcelID, &addr, &city); err != nil {
			return 0, fmt.Errorf("failed to scan unresolved parcel: %w", err)
		}

		if ref, ok := county.ByNumber(coNo); ok {
			targets = append(targets, target{coNo, parcelID, ref})
			continue
		}
		if ref, conf := county.FromAddress(joinAddress(addr, city)); conf != county.MatchNone {
			targets = append(targets, target{coNo, parcelID, ref})
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating unresolved parcels: %w", err)
	}

	resolved := 0
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return resolved, err
		}
		applied, err := e.reenrichOne(ctx, t.countyNumber, t.parcelID, t.ref)
		if err != nil {
			return resolved, fmt.Errorf("failed to re-enrich parcel %d/%s: %w", t.countyNumber, t.parcelID, err)
		}
		if applied {
			resolved++
		}
	}
	return resolved, nil
}

// reenrichOne backfills the county reference for one parcel. Filling a
// null reference mutates the canonical row like any other merge, so the
// prior state is archived first under the same lock-archive-overwrite
// sequence mergeOne uses.
func (e *Engine) reenrichOne(ctx context.Context, countyNumber int, parcelID string, ref county.Reference) (bool, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, enr, err := e.lockExisting(ctx, tx, countyNumber, parcelID)
	if err != nil {
		return false, err
	}
	if enr.fips != nil {
		// Resolved by another writer since the scan.
		return false, nil
	}

	if err := e.archiveCurrent(ctx, tx, countyNumber, parcelID); err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE florida_parcels
		SET county_fips = $3, county_name = $4, updated_at = now()
		WHERE co_no = $1 AND parcel_id = $2
	`, countyNumber, parcelID, ref.FIPS, ref.Name)
	if err != nil {
		return false, fmt.Errorf("failed to update county reference: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n != 1 {
		return false, fmt.Errorf("expected to update 1 parcel row, updated %d", n)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit re-enrichment: %w", err)
	}
	return true, nil
}

// candidateArgs lines up with parcelColumns.
func candidateArgs(c *normalize.Candidate, enr enrichment) []interface{} {
	return []interface{}{
		c.CountyNumber, c.ParcelID, c.AssessmentYear, c.DORUseCode, c.JustValue,
		c.AssessedValueSD, c.AssessedValueNSD, c.TaxableValueSD, c.TaxableValueNSD,
		c.LandValue, c.BuildingValue, c.TotalValue,
		c.ActualYearBuilt, c.EffectiveYearBuilt, c.TotalLivingArea, c.LandSqFoot,
		c.NumBuildings, c.NumResidentialUnits,
		c.SalePrice1, c.SaleYear1, c.SaleMonth1, c.SaleDate1,
		c.SalePrice2, c.SaleYear2, c.SaleMonth2,
		c.OwnerName, c.OwnerAddress1, c.OwnerAddress2, c.OwnerCity, c.OwnerState, c.OwnerZip,
		c.PhysicalAddress1, c.PhysicalAddress2, c.PhysicalCity, c.PhysicalZip,
		c.LegalDescription, c.Township, c.Range, c.Section,
		enr.fips, enr.name,
	}
}

func placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ps, ", ")
}

func eqIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
