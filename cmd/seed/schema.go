package main

import (
	"fmt"
	"log"

	"github.com/urfave/cli/v2"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS snapshot_records (
		id BIGSERIAL PRIMARY KEY,
		snapshot_date DATE NOT NULL,
		source TEXT NOT NULL,
		specification TEXT NOT NULL,
		od DOUBLE PRECISION,
		wt DOUBLE PRECISION,
		mt DOUBLE PRECISION NOT NULL DEFAULT 0,
		make TEXT,
		branch TEXT,
		additional_spec TEXT,
		grade TEXT,
		od_category TEXT,
		wt_schedule TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshot_records_date_source
		ON snapshot_records (snapshot_date, source)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshot_records_spec
		ON snapshot_records (specification)`,
	`CREATE TABLE IF NOT EXISTS grade_mappings (
		specification TEXT PRIMARY KEY,
		grade TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comparison_runs (
		id BIGSERIAL PRIMARY KEY,
		old_date DATE NOT NULL,
		new_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS comparison_records (
		id BIGSERIAL PRIMARY KEY,
		run_id BIGINT NOT NULL REFERENCES comparison_runs(id) ON DELETE CASCADE,
		key TEXT NOT NULL,
		specification TEXT NOT NULL,
		od TEXT NOT NULL,
		wt TEXT NOT NULL,
		old_mt DOUBLE PRECISION NOT NULL,
		new_mt DOUBLE PRECISION NOT NULL,
		delta DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL,
		is_zero_difference BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comparison_records_run
		ON comparison_records (run_id)`,
	`CREATE TABLE IF NOT EXISTS priority_runs (
		id BIGSERIAL PRIMARY KEY,
		snapshot_date DATE NOT NULL,
		threshold_mt DOUBLE PRECISION NOT NULL,
		top_n INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS priority_run_specs (
		id BIGSERIAL PRIMARY KEY,
		run_id BIGINT NOT NULL REFERENCES priority_runs(id) ON DELETE CASCADE,
		rank INTEGER NOT NULL,
		specification TEXT NOT NULL,
		total_free_for_sale_mt DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pipeline_runs (
		id BIGSERIAL PRIMARY KEY,
		pipeline_name TEXT NOT NULL,
		date DATE NOT NULL,
		status TEXT NOT NULL,
		total_files INTEGER NOT NULL DEFAULT 0,
		processed_files INTEGER NOT NULL DEFAULT 0,
		total_rows BIGINT NOT NULL DEFAULT 0,
		started_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ,
		error_message TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS pipeline_file_jobs (
		id BIGSERIAL PRIMARY KEY,
		pipeline_run_id BIGINT NOT NULL REFERENCES pipeline_runs(id) ON DELETE CASCADE,
		file_path TEXT NOT NULL,
		status TEXT NOT NULL,
		error_message TEXT,
		processed_at TIMESTAMPTZ,
		retry_count INTEGER NOT NULL DEFAULT 0
	)`,
}

func runSchema(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	log.Println("Creating analytics tables...")
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(c.Context, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	log.Println("Schema created successfully!")
	return nil
}
