package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/pipestock/backend-go/internal/repository"
)

func runGradeSeed(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	filePath := c.String("file")
	log.Printf("Seeding grade_mappings from %s\n", filePath)

	mappings, err := readGradeMappings(filePath)
	if err != nil {
		return err
	}
	if len(mappings) == 0 {
		return fmt.Errorf("no grade mappings found in %s", filePath)
	}

	repo := repository.NewGradeMappingRepository(sqlx.NewDb(db, "pgx"))
	if err := repo.Upsert(c.Context, mappings); err != nil {
		return err
	}

	log.Printf("Successfully seeded %d grade mappings\n", len(mappings))
	return nil
}

func readGradeMappings(filePath string) ([]repository.GradeMapping, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	specIdx, gradeIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "specification", "spec":
			specIdx = i
		case "grade":
			gradeIdx = i
		}
	}
	if specIdx < 0 || gradeIdx < 0 {
		return nil, fmt.Errorf("CSV header must contain specification and grade columns, got %v", header)
	}

	var mappings []repository.GradeMapping
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		spec := strings.ToUpper(strings.TrimSpace(record[specIdx]))
		grade := strings.TrimSpace(record[gradeIdx])
		if spec == "" || grade == "" {
			continue
		}
		mappings = append(mappings, repository.GradeMapping{
			Specification: spec,
			Grade:         grade,
		})
	}

	return mappings, nil
}
