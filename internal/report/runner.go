// Package report produces the weekly Free-For-Sale report: it pulls the
// latest snapshot workbook from object storage, runs it through the
// snapshot pipeline and writes the aggregated CSV outputs.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/pipestock/backend-go/internal/aggregate"
	"github.com/andresuchdata/pipestock/backend-go/internal/config"
	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
	"github.com/andresuchdata/pipestock/backend-go/internal/pipeline"
	"github.com/andresuchdata/pipestock/backend-go/internal/pivot"
	"github.com/andresuchdata/pipestock/backend-go/internal/priority"
	"github.com/andresuchdata/pipestock/backend-go/internal/refdata"
	"github.com/andresuchdata/pipestock/backend-go/internal/storage"
)

// Runner wires storage, the snapshot pipeline and the report writers.
type Runner struct {
	store    storage.ObjectStorage
	pipeline pipeline.Pipeline
	sink     pipeline.SnapshotSink

	downloadDir string
	reportsDir  string
	cfg         config.ReportConfig
	tables      *refdata.Tables

	snapshotPrefix string
	reportPrefix   string
	upload         bool
}

// NewRunner creates a report runner. sink may be nil when the run should
// not persist the snapshot to Postgres.
func NewRunner(store storage.ObjectStorage, p pipeline.Pipeline, sink pipeline.SnapshotSink, appCfg config.AppConfig, storageCfg config.StorageConfig, reportCfg config.ReportConfig, upload bool) *Runner {
	return &Runner{
		store:          store,
		pipeline:       p,
		sink:           sink,
		downloadDir:    appCfg.DownloadDir,
		reportsDir:     appCfg.ReportsDir,
		cfg:            reportCfg,
		tables:         refdata.Default(),
		snapshotPrefix: storageCfg.SnapshotPrefix,
		reportPrefix:   storageCfg.ReportPrefix,
		upload:         upload,
	}
}

// Run executes one full report cycle for the latest snapshot in storage.
func (r *Runner) Run(ctx context.Context) error {
	key, err := storage.LatestSnapshotKey(ctx, r.store, r.snapshotPrefix)
	if err != nil {
		return err
	}
	log.Info().Str("key", key).Msg("resolved latest snapshot")

	localPath := filepath.Join(r.downloadDir, filepath.Base(key))
	if err := r.store.DownloadObject(ctx, key, localPath); err != nil {
		return fmt.Errorf("failed to download snapshot %s: %w", key, err)
	}

	return r.RunFile(ctx, localPath)
}

// RunFile executes a report cycle for a local snapshot workbook.
func (r *Runner) RunFile(ctx context.Context, localPath string) error {
	if err := r.pipeline.Validate(localPath); err != nil {
		return err
	}

	snap, err := r.pipeline.Transform(ctx, localPath)
	if err != nil {
		return err
	}

	if r.sink != nil {
		if err := r.sink.SaveSnapshot(ctx, snap.Date, snap); err != nil {
			return fmt.Errorf("failed to persist snapshot: %w", err)
		}
	}

	dateTag := snap.Date.Format("20060102")
	aggregated := aggregate.ComputeFreeForSale(snap.Stock, snap.Reservations, snap.Incoming)
	ranked := priority.Rank(snap.Stock, snap.Reservations, snap.Incoming, r.cfg.PriorityThresholdMT, r.cfg.PriorityTopN)

	ffsPath := filepath.Join(r.reportsDir, fmt.Sprintf("%s_free_for_sale.csv", dateTag))
	if err := WriteFreeForSaleCSV(ffsPath, aggregated); err != nil {
		return fmt.Errorf("failed to write free for sale report: %w", err)
	}

	priorityPath := filepath.Join(r.reportsDir, fmt.Sprintf("%s_priority.csv", dateTag))
	if err := WritePriorityCSV(priorityPath, ranked); err != nil {
		return fmt.Errorf("failed to write priority report: %w", err)
	}

	summaries := filterSummaries(aggregate.SummarizeSpecs(aggregated), r.cfg.ReportSpecs)
	summaryPath := filepath.Join(r.reportsDir, fmt.Sprintf("%s_spec_summary.csv", dateTag))
	if err := WriteSpecSummaryCSV(summaryPath, summaries); err != nil {
		return fmt.Errorf("failed to write spec summary report: %w", err)
	}

	table := pivot.Build(snap.Stock, r.tables.ODOrder, pivot.SchedulesFor(stockGrades(snap.Stock), r.tables), nil)
	heatmapPath := filepath.Join(r.reportsDir, fmt.Sprintf("%s_heatmap.csv", dateTag))
	if err := WriteHeatmapCSV(heatmapPath, table); err != nil {
		return fmt.Errorf("failed to write heatmap report: %w", err)
	}

	log.Info().
		Str("date", snap.Date.Format("2006-01-02")).
		Int("aggregated", len(aggregated)).
		Int("ranked", len(ranked)).
		Int("summarized", len(summaries)).
		Msg("report written")

	if r.upload {
		for _, path := range []string{ffsPath, priorityPath, summaryPath, heatmapPath} {
			if err := r.uploadReport(ctx, path); err != nil {
				return err
			}
		}
	}

	return nil
}

// RunComparison diffs two local snapshot workbooks and writes the
// comparison CSV. Neither snapshot is persisted.
func (r *Runner) RunComparison(ctx context.Context, previousPath, currentPath string) error {
	oldSnap, err := r.transform(ctx, previousPath)
	if err != nil {
		return err
	}
	newSnap, err := r.transform(ctx, currentPath)
	if err != nil {
		return err
	}

	records := aggregate.Compare(oldSnap.Stock, newSnap.Stock)
	comparisonPath := filepath.Join(r.reportsDir, fmt.Sprintf("%s_vs_%s_comparison.csv",
		oldSnap.Date.Format("20060102"), newSnap.Date.Format("20060102")))
	if err := WriteComparisonCSV(comparisonPath, records); err != nil {
		return fmt.Errorf("failed to write comparison report: %w", err)
	}

	log.Info().
		Str("old_date", oldSnap.Date.Format("2006-01-02")).
		Str("new_date", newSnap.Date.Format("2006-01-02")).
		Int("records", len(records)).
		Msg("comparison written")

	if r.upload {
		return r.uploadReport(ctx, comparisonPath)
	}
	return nil
}

func (r *Runner) transform(ctx context.Context, localPath string) (*domain.SnapshotData, error) {
	if err := r.pipeline.Validate(localPath); err != nil {
		return nil, err
	}
	return r.pipeline.Transform(ctx, localPath)
}

// filterSummaries narrows the summary to the configured report specs.
// An empty spec list keeps everything.
func filterSummaries(summaries []domain.SpecSummary, specs []string) []domain.SpecSummary {
	if len(specs) == 0 {
		return summaries
	}
	keep := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		keep[s] = struct{}{}
	}
	filtered := make([]domain.SpecSummary, 0, len(specs))
	for _, s := range summaries {
		if _, ok := keep[s.Specification]; ok {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func stockGrades(records []domain.InventoryRecord) []string {
	seen := make(map[string]struct{})
	var grades []string
	for _, rec := range records {
		if _, ok := seen[rec.Grade]; ok {
			continue
		}
		seen[rec.Grade] = struct{}{}
		grades = append(grades, rec.Grade)
	}
	return grades
}

func (r *Runner) uploadReport(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read report %s: %w", path, err)
	}
	key := r.reportPrefix + filepath.Base(path)
	if err := r.store.UploadObject(ctx, key, data); err != nil {
		return err
	}
	log.Info().Str("key", key).Msg("report uploaded")
	return nil
}
