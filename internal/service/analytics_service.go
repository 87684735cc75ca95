package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/pipestock/backend-go/internal/aggregate"
	"github.com/andresuchdata/pipestock/backend-go/internal/cache"
	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
	"github.com/andresuchdata/pipestock/backend-go/internal/pivot"
	"github.com/andresuchdata/pipestock/backend-go/internal/priority"
	"github.com/andresuchdata/pipestock/backend-go/internal/refdata"
	"github.com/andresuchdata/pipestock/backend-go/internal/repository"
)

// AnalyticsService orchestrates snapshot analytics: heatmap pivots,
// Free-For-Sale aggregation, snapshot comparison and priority ranking.
type AnalyticsService struct {
	repo   repository.SnapshotRepository
	runs   repository.RunRepository
	cache  cache.AnalyticsCache
	tables *refdata.Tables
}

func NewAnalyticsService(repo repository.SnapshotRepository, runs repository.RunRepository, cacheImpl cache.AnalyticsCache) *AnalyticsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalyticsCache()
	}
	return &AnalyticsService{
		repo:   repo,
		runs:   runs,
		cache:  cacheImpl,
		tables: refdata.Default(),
	}
}

// Heatmap builds the OD x WT tonnage pivot for a snapshot. An empty
// snapshot yields a table with only the Total row, never an error.
func (s *AnalyticsService) Heatmap(ctx context.Context, filter domain.HeatmapFilter) (*pivot.Table, error) {
	if filter.Source == "" {
		filter.Source = domain.SourceStock
	}

	if table, ok, err := s.cache.GetHeatmap(ctx, filter); err == nil && ok {
		return table, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get heatmap failed")
	}

	records, err := s.repo.GetRecords(ctx, filter)
	if err != nil {
		return nil, err
	}

	grades := s.gradesForPivot(filter, records)
	table := pivot.Build(records, s.tables.ODOrder, pivot.SchedulesFor(grades, s.tables), nil)

	if err := s.cache.SetHeatmap(ctx, filter, table); err != nil {
		log.Warn().Err(err).Msg("analytics: cache set heatmap failed")
	}

	return table, nil
}

// gradesForPivot decides which grade families contribute WT columns. A
// grade filter pins the axis to that family; otherwise the families seen
// in the data drive it.
func (s *AnalyticsService) gradesForPivot(filter domain.HeatmapFilter, records []domain.InventoryRecord) []string {
	if filter.Grade != "" {
		return []string{filter.Grade}
	}

	seen := make(map[string]struct{})
	grades := make([]string, 0, 4)
	for _, rec := range records {
		if _, ok := seen[rec.Grade]; ok {
			continue
		}
		seen[rec.Grade] = struct{}{}
		grades = append(grades, rec.Grade)
	}
	return grades
}

// FreeForSale computes the aggregated Free-For-Sale view for a snapshot date.
func (s *AnalyticsService) FreeForSale(ctx context.Context, date string) ([]domain.AggregatedRecord, error) {
	snap, err := s.repo.GetSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}
	return aggregate.ComputeFreeForSale(snap.Stock, snap.Reservations, snap.Incoming), nil
}

// Comparison diffs the stock sheets of two snapshot dates. Persisted runs
// are served as-is; fresh runs are stored best-effort.
func (s *AnalyticsService) Comparison(ctx context.Context, oldDate, newDate string) ([]domain.ComparisonRecord, error) {
	if s.runs != nil {
		if records, ok, err := s.runs.GetComparisonRun(ctx, oldDate, newDate); err == nil && ok {
			return records, nil
		} else if err != nil {
			log.Warn().Err(err).Msg("analytics: comparison run lookup failed")
		}
	}

	oldRecords, err := s.repo.GetRecords(ctx, domain.HeatmapFilter{SnapshotDate: oldDate, Source: domain.SourceStock})
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", oldDate, err)
	}
	newRecords, err := s.repo.GetRecords(ctx, domain.HeatmapFilter{SnapshotDate: newDate, Source: domain.SourceStock})
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", newDate, err)
	}

	records := aggregate.Compare(oldRecords, newRecords)

	if s.runs != nil {
		if _, err := s.runs.SaveComparisonRun(ctx, oldDate, newDate, records); err != nil {
			log.Warn().Err(err).Msg("analytics: failed to persist comparison run")
		}
	}

	return records, nil
}

// Priority ranks specifications by total Free-For-Sale tonnage.
// Non-positive threshold and topN fall back to the defaults.
func (s *AnalyticsService) Priority(ctx context.Context, date string, thresholdMT float64, topN int) ([]domain.RankedSpec, error) {
	if thresholdMT <= 0 {
		thresholdMT = priority.DefaultThresholdMT
	}
	if topN <= 0 {
		topN = priority.DefaultTopN
	}

	snap, err := s.repo.GetSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}

	ranked := priority.Rank(snap.Stock, snap.Reservations, snap.Incoming, thresholdMT, topN)

	if s.runs != nil {
		if _, err := s.runs.SavePriorityRun(ctx, date, thresholdMT, topN, ranked); err != nil {
			log.Warn().Err(err).Msg("analytics: failed to persist priority run")
		}
	}

	return ranked, nil
}

// SpecSummaries returns per-spec totals for a snapshot date.
func (s *AnalyticsService) SpecSummaries(ctx context.Context, date string) ([]domain.SpecSummary, error) {
	if summaries, ok, err := s.cache.GetSpecSummaries(ctx, date); err == nil && ok {
		return summaries, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get spec summaries failed")
	}

	snap, err := s.repo.GetSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}

	aggregated := aggregate.ComputeFreeForSale(snap.Stock, snap.Reservations, snap.Incoming)
	summaries := aggregate.SummarizeSpecs(aggregated)

	if err := s.cache.SetSpecSummaries(ctx, date, summaries); err != nil {
		log.Warn().Err(err).Msg("analytics: cache set spec summaries failed")
	}

	return summaries, nil
}

func (s *AnalyticsService) AvailableDates(ctx context.Context, limit int) ([]time.Time, error) {
	return s.repo.GetAvailableDates(ctx, limit)
}

func (s *AnalyticsService) Grades(ctx context.Context, date string) ([]string, error) {
	return s.repo.GetGrades(ctx, date)
}

// InvalidateCache clears derived analytics after a new snapshot lands.
func (s *AnalyticsService) InvalidateCache(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("analytics: cache invalidation failed")
	}
}
