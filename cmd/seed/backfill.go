package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/pipestock/backend-go/internal/classify"
	"github.com/andresuchdata/pipestock/backend-go/internal/pipeline"
	"github.com/andresuchdata/pipestock/backend-go/internal/repository"
)

func runBackfill(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	dir := c.String("dir")
	files, err := collectWorkbooks(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .xlsx workbooks found in %s", dir)
	}
	log.Printf("Backfilling %d workbooks from %s\n", len(files), dir)

	sqlxDB := sqlx.NewDb(db, "pgx")
	snapshotRepo := repository.NewSnapshotRepository(sqlxDB)

	mapping, err := repository.NewGradeMappingRepository(sqlxDB).LoadAll(c.Context)
	if err != nil {
		log.Printf("warning: grade mappings unavailable, classifying by spec pattern only: %v", err)
		mapping = nil
	}

	cfg := pipeline.DefaultPipelineConfig("inventory_snapshot")
	if workers := c.Int("workers"); workers > 0 {
		cfg.WorkerCount = workers
	}

	snapshotPipeline := pipeline.NewSnapshotPipeline(pipeline.SnapshotConfig{}, classify.NewEngine(mapping, nil))
	orchestrator := pipeline.NewOrchestrator(db, snapshotRepo, cfg)

	if err := orchestrator.Run(c.Context, snapshotPipeline, files); err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	log.Println("Backfill completed successfully!")
	return nil
}

func collectWorkbooks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".xlsx") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}
