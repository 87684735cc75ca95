package service

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/pipestock/backend-go/internal/classify"
	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
	"github.com/andresuchdata/pipestock/backend-go/internal/pivot"
)

// fakeSnapshotRepo serves one in-memory snapshot keyed by date.
type fakeSnapshotRepo struct {
	date string
	snap *domain.SnapshotData
}

func (f *fakeSnapshotRepo) SaveSnapshot(ctx context.Context, date time.Time, snap *domain.SnapshotData) error {
	f.snap = snap
	return nil
}

func (f *fakeSnapshotRepo) GetSnapshot(ctx context.Context, date string) (*domain.SnapshotData, error) {
	return f.snap, nil
}

func (f *fakeSnapshotRepo) GetRecords(ctx context.Context, filter domain.HeatmapFilter) ([]domain.InventoryRecord, error) {
	if f.snap == nil {
		return nil, nil
	}
	records := f.snap.Records(filter.Source)
	if filter.Grade == "" {
		return records, nil
	}
	filtered := make([]domain.InventoryRecord, 0, len(records))
	for _, rec := range records {
		if rec.Grade == filter.Grade {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

func (f *fakeSnapshotRepo) GetAvailableDates(ctx context.Context, limit int) ([]time.Time, error) {
	d, _ := time.Parse("2006-01-02", f.date)
	return []time.Time{d}, nil
}

func (f *fakeSnapshotRepo) GetGrades(ctx context.Context, date string) ([]string, error) {
	return []string{"CS & AS"}, nil
}

func snapshotFixture(t *testing.T) *domain.SnapshotData {
	t.Helper()

	engine := classify.NewEngine(nil, nil)
	od, wt := 273.0, 9.27
	mk := func(mt float64) domain.InventoryRecord {
		rec := domain.InventoryRecord{Specification: "CSSMP106B", OD: &od, WT: &wt, MT: mt}
		engine.Annotate(&rec)
		return rec
	}

	return &domain.SnapshotData{
		Stock:        []domain.InventoryRecord{mk(10)},
		Incoming:     []domain.InventoryRecord{mk(5)},
		Reservations: []domain.InventoryRecord{mk(3)},
	}
}

func TestAnalyticsServiceFreeForSale(t *testing.T) {
	repo := &fakeSnapshotRepo{date: "2025-08-24", snap: snapshotFixture(t)}
	svc := NewAnalyticsService(repo, nil, nil)

	records, err := svc.FreeForSale(context.Background(), "2025-08-24")
	if err != nil {
		t.Fatalf("FreeForSale: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}

	rec := records[0]
	if rec.Specification != "CSSMP106B" {
		t.Errorf("spec = %q", rec.Specification)
	}
	if rec.FreeForSaleMT != 12.0 {
		t.Errorf("free for sale = %v, want 12.0 (10 - 3 + 5)", rec.FreeForSaleMT)
	}
}

func TestAnalyticsServiceHeatmap(t *testing.T) {
	repo := &fakeSnapshotRepo{date: "2025-08-24", snap: snapshotFixture(t)}
	svc := NewAnalyticsService(repo, nil, nil)

	table, err := svc.Heatmap(context.Background(), domain.HeatmapFilter{SnapshotDate: "2025-08-24"})
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}

	if got, ok := table.Cell(`10"`, "STD"); !ok || got != 10.0 {
		t.Errorf("cell 10\"/STD = %v (ok=%v), want 10.0", got, ok)
	}
	if got, ok := table.Cell(pivot.TotalLabel, pivot.TotalLabel); !ok || got != 10.0 {
		t.Errorf("grand total = %v (ok=%v), want 10.0", got, ok)
	}
}

func TestAnalyticsServicePriorityDefaults(t *testing.T) {
	repo := &fakeSnapshotRepo{date: "2025-08-24", snap: snapshotFixture(t)}
	svc := NewAnalyticsService(repo, nil, nil)

	// Total 12 MT is below the default 30 MT threshold.
	ranked, err := svc.Priority(context.Background(), "2025-08-24", 0, 0)
	if err != nil {
		t.Fatalf("Priority: %v", err)
	}
	if len(ranked) != 0 {
		t.Errorf("ranked = %+v, want empty below default threshold", ranked)
	}

	ranked, err = svc.Priority(context.Background(), "2025-08-24", 10, 5)
	if err != nil {
		t.Fatalf("Priority: %v", err)
	}
	if len(ranked) != 1 || ranked[0].TotalFreeForSaleMT != 12.0 {
		t.Errorf("ranked = %+v, want CSSMP106B at 12.0", ranked)
	}
}

func TestAnalyticsServiceComparisonRecompute(t *testing.T) {
	repo := &fakeSnapshotRepo{date: "2025-08-24", snap: snapshotFixture(t)}
	svc := NewAnalyticsService(repo, nil, nil)

	// Same snapshot on both sides: everything unchanged.
	records, err := svc.Comparison(context.Background(), "2025-08-17", "2025-08-24")
	if err != nil {
		t.Fatalf("Comparison: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Status != domain.StatusUnchanged {
		t.Errorf("status = %s, want %s", records[0].Status, domain.StatusUnchanged)
	}
}
