package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/drewmad/claimguardian-platform-sub005/county"
)

// initSchema creates the ingestion tables if they don't exist
func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS raw_parcel_records (
		id BIGSERIAL PRIMARY KEY,
		source TEXT NOT NULL,
		source_id TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		attributes JSONB NOT NULL,
		ingested_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (source, source_id, content_hash)
	);

	CREATE TABLE IF NOT EXISTS florida_counties (
		co_no INTEGER PRIMARY KEY,
		county_name TEXT NOT NULL,
		county_fips INTEGER NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS florida_parcels (
		co_no INTEGER NOT NULL,
		parcel_id TEXT NOT NULL,
		asmnt_yr INTEGER,
		dor_uc TEXT,
		jv DOUBLE PRECISION,
		av_sd DOUBLE PRECISION,
		av_nsd DOUBLE PRECISION,
		tv_sd DOUBLE PRECISION,
		tv_nsd DOUBLE PRECISION,
		lnd_val DOUBLE PRECISION,
		bldg_val DOUBLE PRECISION,
		tot_val DOUBLE PRECISION,
		act_yr_blt INTEGER,
		eff_yr_blt INTEGER,
		tot_lvg_ar DOUBLE PRECISION,
		lnd_sqfoot DOUBLE PRECISION,
		no_buldng INTEGER,
		no_res_unt INTEGER,
		sale_prc1 DOUBLE PRECISION,
		sale_yr1 INTEGER,
		sale_mo1 TEXT,
		sale_date1 DATE,
		sale_prc2 DOUBLE PRECISION,
		sale_yr2 INTEGER,
		sale_mo2 TEXT,
		own_name TEXT,
		own_addr1 TEXT,
		own_addr2 TEXT,
		own_city TEXT,
		own_state TEXT,
		own_zipcd TEXT,
		phy_addr1 TEXT,
		phy_addr2 TEXT,
		phy_city TEXT,
		phy_zipcd TEXT,
		s_legal TEXT,
		twn TEXT,
		rng TEXT,
		sec TEXT,
		county_fips INTEGER,
		county_name TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (co_no, parcel_id)
	);

	CREATE TABLE IF NOT EXISTS parcel_history (
		co_no INTEGER NOT NULL,
		parcel_id TEXT NOT NULL,
		version BIGINT NOT NULL,
		asmnt_yr INTEGER,
		dor_uc TEXT,
		jv DOUBLE PRECISION,
		av_sd DOUBLE PRECISION,
		av_nsd DOUBLE PRECISION,
		tv_sd DOUBLE PRECISION,
		tv_nsd DOUBLE PRECISION,
		lnd_val DOUBLE PRECISION,
		bldg_val DOUBLE PRECISION,
		tot_val DOUBLE PRECISION,
		act_yr_blt INTEGER,
		eff_yr_blt INTEGER,
		tot_lvg_ar DOUBLE PRECISION,
		lnd_sqfoot DOUBLE PRECISION,
		no_buldng INTEGER,
		no_res_unt INTEGER,
		sale_prc1 DOUBLE PRECISION,
		sale_yr1 INTEGER,
		sale_mo1 TEXT,
		sale_date1 DATE,
		sale_prc2 DOUBLE PRECISION,
		sale_yr2 INTEGER,
		sale_mo2 TEXT,
		own_name TEXT,
		own_addr1 TEXT,
		own_addr2 TEXT,
		own_city TEXT,
		own_state TEXT,
		own_zipcd TEXT,
		phy_addr1 TEXT,
		phy_addr2 TEXT,
		phy_city TEXT,
		phy_zipcd TEXT,
		s_legal TEXT,
		twn TEXT,
		rng TEXT,
		sec TEXT,
		county_fips INTEGER,
		county_name TEXT,
		archived_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (co_no, parcel_id, version)
	);

	CREATE TABLE IF NOT EXISTS ingest_checkpoints (
		source TEXT PRIMARY KEY,
		last_row BIGINT NOT NULL,
		last_processed_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_raw_parcel_records_source ON raw_parcel_records (source, ingested_at);
	CREATE INDEX IF NOT EXISTS idx_florida_parcels_county_fips ON florida_parcels (county_fips);
	CREATE INDEX IF NOT EXISTS idx_florida_parcels_phy_city ON florida_parcels (phy_city);
	CREATE INDEX IF NOT EXISTS idx_florida_parcels_own_name ON florida_parcels (own_name);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := seedCounties(db); err != nil {
		return err
	}

	log.Println("✅ Schema initialized")
	return nil
}

// seedCounties loads the county reference table. Re-running is a no-op.
func seedCounties(db *sql.DB) error {
	stmt, err := db.Prepare(`
		INSERT INTO florida_counties (co_no, county_name, county_fips)
		VALUES ($1, $2, $3)
		ON CONFLICT (co_no) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare county seed: %w", err)
	}
	defer stmt.Close()

	for _, ref := range county.All() {
		if _, err := stmt.Exec(ref.Number, ref.Name, ref.FIPS); err != nil {
			return fmt.Errorf("failed to seed county %d (%s): %w", ref.Number, ref.Name, err)
		}
	}

	return nil
}
