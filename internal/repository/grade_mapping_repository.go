// backend-go/internal/repository/grade_mapping_repository.go
package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// GradeMapping is one curated specification-to-grade override. The
// classifier consults these before falling back to pattern rules.
type GradeMapping struct {
	Specification string `db:"specification"`
	Grade         string `db:"grade"`
}

type GradeMappingRepository interface {
	LoadAll(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, mappings []GradeMapping) error
}

type gradeMappingRepository struct {
	db *sqlx.DB
}

func NewGradeMappingRepository(db *sqlx.DB) GradeMappingRepository {
	return &gradeMappingRepository{db: db}
}

func (r *gradeMappingRepository) LoadAll(ctx context.Context) (map[string]string, error) {
	var rows []GradeMapping
	query := `SELECT specification, grade FROM grade_mappings`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error loading grade mappings: %w", err)
	}

	mapping := make(map[string]string, len(rows))
	for _, row := range rows {
		mapping[row.Specification] = row.Grade
	}
	return mapping, nil
}

func (r *gradeMappingRepository) Upsert(ctx context.Context, mappings []GradeMapping) error {
	if len(mappings) == 0 {
		return nil
	}

	query := `
		INSERT INTO grade_mappings (specification, grade)
		VALUES (:specification, :grade)
		ON CONFLICT (specification) DO UPDATE SET grade = EXCLUDED.grade
	`
	if _, err := r.db.NamedExecContext(ctx, query, mappings); err != nil {
		return fmt.Errorf("error upserting grade mappings: %w", err)
	}
	return nil
}
