package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Stock"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	rows := [][]interface{}{
		{"Specification", "OD", "WT", "MT"},
		{"CSSMP106B", 273.0, 9.27, 14.5},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Stock", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func TestSnapshotPipelineGetSnapshotDate(t *testing.T) {
	p := NewSnapshotPipeline(SnapshotConfig{}, nil)

	date, err := p.GetSnapshotDate("20250824_inventory.xlsx")
	if err != nil {
		t.Fatalf("GetSnapshotDate: %v", err)
	}
	if got := date.Format("2006-01-02"); got != "2025-08-24" {
		t.Errorf("date = %s, want 2025-08-24", got)
	}

	if _, err := p.GetSnapshotDate("inv.xlsx"); err == nil {
		t.Error("expected error for filename without date prefix")
	}
}

func TestSnapshotPipelineValidate(t *testing.T) {
	p := NewSnapshotPipeline(SnapshotConfig{}, nil)
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "20250824_inventory.csv")
	if err := os.WriteFile(csvPath, []byte("a,b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := p.Validate(csvPath); err == nil {
		t.Error("expected error for non-xlsx file")
	}

	if err := p.Validate(dir); err == nil {
		t.Error("expected error for directory input")
	}

	if err := p.Validate(filepath.Join(dir, "missing.xlsx")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSnapshotPipelineTransform(t *testing.T) {
	p := NewSnapshotPipeline(SnapshotConfig{}, nil)
	path := filepath.Join(t.TempDir(), "20250824_inventory.xlsx")
	writeWorkbook(t, path)

	snap, err := p.Transform(context.Background(), path)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if got := snap.Date.Format("2006-01-02"); got != "2025-08-24" {
		t.Errorf("snapshot date = %s, want 2025-08-24", got)
	}
	if len(snap.Stock) != 1 {
		t.Fatalf("stock rows = %d, want 1", len(snap.Stock))
	}

	rec := snap.Stock[0]
	if rec.Grade != "CS & AS" {
		t.Errorf("grade = %q, want CS & AS", rec.Grade)
	}
	if rec.ODCategory != `10"` {
		t.Errorf("od category = %q, want 10\"", rec.ODCategory)
	}
	if rec.WTSchedule != "STD" {
		t.Errorf("wt schedule = %q, want STD", rec.WTSchedule)
	}
}
