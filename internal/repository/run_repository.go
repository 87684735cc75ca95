// backend-go/internal/repository/run_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
)

// RunRepository persists comparison and priority runs so historical
// report output stays queryable after the source snapshots rotate out.
type RunRepository interface {
	SaveComparisonRun(ctx context.Context, oldDate, newDate string, records []domain.ComparisonRecord) (int64, error)
	GetComparisonRun(ctx context.Context, oldDate, newDate string) ([]domain.ComparisonRecord, bool, error)
	SavePriorityRun(ctx context.Context, snapshotDate string, thresholdMT float64, topN int, ranked []domain.RankedSpec) (int64, error)
}

type runRepository struct {
	db *sqlx.DB
}

func NewRunRepository(db *sqlx.DB) RunRepository {
	return &runRepository{db: db}
}

type comparisonRecordRow struct {
	RunID            int64   `db:"run_id"`
	Key              string  `db:"key"`
	Specification    string  `db:"specification"`
	OD               string  `db:"od"`
	WT               string  `db:"wt"`
	OldMT            float64 `db:"old_mt"`
	NewMT            float64 `db:"new_mt"`
	Delta            float64 `db:"delta"`
	Status           string  `db:"status"`
	IsZeroDifference bool    `db:"is_zero_difference"`
}

func (r *runRepository) SaveComparisonRun(ctx context.Context, oldDate, newDate string, records []domain.ComparisonRecord) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting comparison run save: %w", err)
	}
	defer tx.Rollback()

	var runID int64
	err = tx.GetContext(ctx, &runID, `
		INSERT INTO comparison_runs (old_date, new_date, created_at)
		VALUES ($1::date, $2::date, $3)
		RETURNING id
	`, oldDate, newDate, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("error creating comparison run: %w", err)
	}

	rows := make([]comparisonRecordRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, comparisonRecordRow{
			RunID:            runID,
			Key:              rec.Key,
			Specification:    rec.Specification,
			OD:               rec.OD,
			WT:               rec.WT,
			OldMT:            rec.OldMT,
			NewMT:            rec.NewMT,
			Delta:            rec.Delta,
			Status:           string(rec.Status),
			IsZeroDifference: rec.IsZeroDifference,
		})
	}

	if len(rows) > 0 {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO comparison_records (
				run_id, key, specification, od, wt,
				old_mt, new_mt, delta, status, is_zero_difference
			) VALUES (
				:run_id, :key, :specification, :od, :wt,
				:old_mt, :new_mt, :delta, :status, :is_zero_difference
			)`, rows); err != nil {
			return 0, fmt.Errorf("error inserting comparison records: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing comparison run: %w", err)
	}
	return runID, nil
}

func (r *runRepository) GetComparisonRun(ctx context.Context, oldDate, newDate string) ([]domain.ComparisonRecord, bool, error) {
	var runID int64
	err := r.db.GetContext(ctx, &runID, `
		SELECT id FROM comparison_runs
		WHERE old_date = $1::date AND new_date = $2::date
		ORDER BY created_at DESC
		LIMIT 1
	`, oldDate, newDate)
	if err != nil {
		// No persisted run; let the caller recompute.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error looking up comparison run: %w", err)
	}

	var rows []comparisonRecordRow
	err = r.db.SelectContext(ctx, &rows, `
		SELECT run_id, key, specification, od, wt,
		       old_mt, new_mt, delta, status, is_zero_difference
		FROM comparison_records
		WHERE run_id = $1
		ORDER BY key
	`, runID)
	if err != nil {
		return nil, false, fmt.Errorf("error loading comparison records: %w", err)
	}

	records := make([]domain.ComparisonRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.ComparisonRecord{
			Key:              row.Key,
			Specification:    row.Specification,
			OD:               row.OD,
			WT:               row.WT,
			OldMT:            row.OldMT,
			NewMT:            row.NewMT,
			Delta:            row.Delta,
			Status:           domain.ComparisonStatus(row.Status),
			IsZeroDifference: row.IsZeroDifference,
		})
	}
	return records, true, nil
}

type rankedSpecRow struct {
	RunID              int64   `db:"run_id"`
	Rank               int     `db:"rank"`
	Specification      string  `db:"specification"`
	TotalFreeForSaleMT float64 `db:"total_free_for_sale_mt"`
}

func (r *runRepository) SavePriorityRun(ctx context.Context, snapshotDate string, thresholdMT float64, topN int, ranked []domain.RankedSpec) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting priority run save: %w", err)
	}
	defer tx.Rollback()

	var runID int64
	err = tx.GetContext(ctx, &runID, `
		INSERT INTO priority_runs (snapshot_date, threshold_mt, top_n, created_at)
		VALUES ($1::date, $2, $3, $4)
		RETURNING id
	`, snapshotDate, thresholdMT, topN, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("error creating priority run: %w", err)
	}

	rows := make([]rankedSpecRow, 0, len(ranked))
	for i, spec := range ranked {
		rows = append(rows, rankedSpecRow{
			RunID:              runID,
			Rank:               i + 1,
			Specification:      spec.Specification,
			TotalFreeForSaleMT: spec.TotalFreeForSaleMT,
		})
	}

	if len(rows) > 0 {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO priority_run_specs (run_id, rank, specification, total_free_for_sale_mt)
			VALUES (:run_id, :rank, :specification, :total_free_for_sale_mt)
		`, rows); err != nil {
			return 0, fmt.Errorf("error inserting priority run specs: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing priority run: %w", err)
	}
	return runID, nil
}
