package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andresuchdata/pipestock/backend-go/internal/classify"
	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
	"github.com/andresuchdata/pipestock/backend-go/internal/ingest"
)

// SnapshotConfig configures the inventory snapshot pipeline.
type SnapshotConfig struct {
	// InputDateFormat is the Go layout of the date prefix in workbook
	// filenames, e.g. 20060102 for 20250824_inventory.xlsx.
	InputDateFormat string
}

// SnapshotPipeline parses inventory workbooks and annotates every record
// with its grade, OD category and WT schedule.
type SnapshotPipeline struct {
	config SnapshotConfig
	engine *classify.Engine
}

// NewSnapshotPipeline creates the inventory snapshot pipeline.
func NewSnapshotPipeline(cfg SnapshotConfig, engine *classify.Engine) *SnapshotPipeline {
	if cfg.InputDateFormat == "" {
		cfg.InputDateFormat = "20060102"
	}
	if engine == nil {
		engine = classify.NewEngine(nil, nil)
	}
	return &SnapshotPipeline{
		config: cfg,
		engine: engine,
	}
}

// Name returns the unique identifier of this pipeline.
func (p *SnapshotPipeline) Name() string {
	return "inventory_snapshot"
}

// GetSnapshotDate extracts the snapshot date from the filename prefix.
func (p *SnapshotPipeline) GetSnapshotDate(filename string) (time.Time, error) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	layout := p.config.InputDateFormat
	if len(base) < len(layout) {
		return time.Time{}, fmt.Errorf("filename %s does not contain date with layout %s", filename, layout)
	}

	return time.Parse(layout, base[:len(layout)])
}

// Validate performs basic validation on the input file.
func (p *SnapshotPipeline) Validate(inputFile string) error {
	info, err := os.Stat(inputFile)
	if err != nil {
		return fmt.Errorf("cannot stat input file %s: %w", inputFile, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path %s is a directory, expected file", inputFile)
	}
	ext := strings.ToLower(filepath.Ext(inputFile))
	if ext != ".xlsx" {
		return fmt.Errorf("unsupported file extension %s for %s (only XLSX snapshots supported)", ext, inputFile)
	}
	return nil
}

// Transform parses the workbook and classifies every record.
func (p *SnapshotPipeline) Transform(ctx context.Context, inputFile string) (*domain.SnapshotData, error) {
	date, err := p.GetSnapshotDate(inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot date: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap, err := ingest.ReadSnapshot(inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest %s: %w", inputFile, err)
	}
	snap.Date = date

	p.engine.AnnotateAll(snap.Stock)
	p.engine.AnnotateAll(snap.Incoming)
	p.engine.AnnotateAll(snap.Reservations)

	return snap, nil
}

var _ Pipeline = (*SnapshotPipeline)(nil)
