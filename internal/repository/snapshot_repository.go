// backend-go/internal/repository/snapshot_repository.go
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
)

const snapshotInsertBatchSize = 500

type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, date time.Time, snap *domain.SnapshotData) error
	GetSnapshot(ctx context.Context, date string) (*domain.SnapshotData, error)
	GetRecords(ctx context.Context, filter domain.HeatmapFilter) ([]domain.InventoryRecord, error)
	GetAvailableDates(ctx context.Context, limit int) ([]time.Time, error)
	GetGrades(ctx context.Context, date string) ([]string, error)
}

type snapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// snapshotRow mirrors one snapshot_records row for named inserts.
type snapshotRow struct {
	SnapshotDate time.Time `db:"snapshot_date"`
	Source       string    `db:"source"`
	domain.InventoryRecord
}

// SaveSnapshot replaces all rows for the snapshot date. Re-ingesting the
// same workbook is therefore idempotent.
func (r *snapshotRepository) SaveSnapshot(ctx context.Context, date time.Time, snap *domain.SnapshotData) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting snapshot save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_records WHERE snapshot_date = $1`, date); err != nil {
		return fmt.Errorf("error clearing snapshot %s: %w", date.Format("2006-01-02"), err)
	}

	sources := []domain.SourceType{domain.SourceStock, domain.SourceIncoming, domain.SourceReservations}
	for _, source := range sources {
		records := snap.Records(source)
		rows := make([]snapshotRow, 0, len(records))
		for _, rec := range records {
			rows = append(rows, snapshotRow{
				SnapshotDate:    date,
				Source:          string(source),
				InventoryRecord: rec,
			})
		}

		for start := 0; start < len(rows); start += snapshotInsertBatchSize {
			end := start + snapshotInsertBatchSize
			if end > len(rows) {
				end = len(rows)
			}
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO snapshot_records (
					snapshot_date, source, specification, od, wt, mt,
					make, branch, additional_spec, grade, od_category, wt_schedule
				) VALUES (
					:snapshot_date, :source, :specification, :od, :wt, :mt,
					:make, :branch, :additional_spec, :grade, :od_category, :wt_schedule
				)`, rows[start:end]); err != nil {
				return fmt.Errorf("error inserting %s records: %w", source, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing snapshot save: %w", err)
	}
	return nil
}

func (r *snapshotRepository) GetSnapshot(ctx context.Context, date string) (*domain.SnapshotData, error) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot date %q: %w", date, err)
	}

	snap := &domain.SnapshotData{Date: parsed}
	for _, source := range []domain.SourceType{domain.SourceStock, domain.SourceIncoming, domain.SourceReservations} {
		records, err := r.GetRecords(ctx, domain.HeatmapFilter{SnapshotDate: date, Source: source})
		if err != nil {
			return nil, err
		}
		switch source {
		case domain.SourceStock:
			snap.Stock = records
		case domain.SourceIncoming:
			snap.Incoming = records
		case domain.SourceReservations:
			snap.Reservations = records
		}
	}
	return snap, nil
}

func (r *snapshotRepository) GetRecords(ctx context.Context, filter domain.HeatmapFilter) ([]domain.InventoryRecord, error) {
	query := `
        SELECT
            specification, od, wt, mt,
            make, branch, additional_spec, grade, od_category, wt_schedule
        FROM snapshot_records
        WHERE 1=1
    `

	var args []interface{}
	var conditions []string
	argCounter := 1

	if filter.SnapshotDate != "" {
		conditions = append(conditions, fmt.Sprintf("snapshot_date = $%d::date", argCounter))
		args = append(args, filter.SnapshotDate)
		argCounter++
	}

	if filter.Source != "" {
		conditions = append(conditions, fmt.Sprintf("source = $%d", argCounter))
		args = append(args, string(filter.Source))
		argCounter++
	}

	if filter.Grade != "" {
		conditions = append(conditions, fmt.Sprintf("grade = $%d", argCounter))
		args = append(args, filter.Grade)
		argCounter++
	}

	if filter.Specification != "" {
		conditions = append(conditions, fmt.Sprintf("specification = $%d", argCounter))
		args = append(args, filter.Specification)
		argCounter++
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY specification, od NULLS LAST, wt NULLS LAST"

	var records []domain.InventoryRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("error getting snapshot records: %w", err)
	}

	return records, nil
}

func (r *snapshotRepository) GetAvailableDates(ctx context.Context, limit int) ([]time.Time, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT DISTINCT snapshot_date
		FROM snapshot_records
		ORDER BY snapshot_date DESC
		LIMIT $1
	`

	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates, query, limit); err != nil {
		return nil, fmt.Errorf("error getting available dates: %w", err)
	}

	return dates, nil
}

func (r *snapshotRepository) GetGrades(ctx context.Context, date string) ([]string, error) {
	query := `
        SELECT DISTINCT grade
        FROM snapshot_records
        WHERE 1=1
    `

	var args []interface{}
	if date != "" {
		query += " AND snapshot_date = $1::date"
		args = append(args, date)
	}

	query += " ORDER BY grade"

	var grades []string
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("error getting grades: %w", err)
	}

	return grades, nil
}
