package report

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/pipestock/backend-go/internal/config"
	"github.com/andresuchdata/pipestock/backend-go/internal/pipeline"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Stock"); err != nil {
		t.Fatalf("rename sheet: %v", err)
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

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func newTestRunner(t *testing.T, reportCfg config.ReportConfig) (*Runner, string) {
	t.Helper()

	dir := t.TempDir()
	appCfg := config.AppConfig{DownloadDir: dir, ReportsDir: dir}
	p := pipeline.NewSnapshotPipeline(pipeline.SnapshotConfig{}, nil)
	return NewRunner(nil, p, nil, appCfg, config.StorageConfig{}, reportCfg, false), dir
}

func TestRunFileWritesAllReports(t *testing.T) {
	runner, dir := newTestRunner(t, config.ReportConfig{
		PriorityThresholdMT: 30,
		PriorityTopN:        15,
	})

	workbook := filepath.Join(dir, "20250824_inventory.xlsx")
	writeWorkbook(t, workbook, [][]interface{}{
		{"Specification", "OD", "WT", "MT"},
		{"CSSMP106B", 273.0, 9.27, 40.0},
	})

	if err := runner.RunFile(context.Background(), workbook); err != nil {
		t.Fatalf("RunFile: %v", err)
	}

	for _, name := range []string{
		"20250824_free_for_sale.csv",
		"20250824_priority.csv",
		"20250824_spec_summary.csv",
		"20250824_heatmap.csv",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected report %s: %v", name, err)
		}
	}

	summary := readCSV(t, filepath.Join(dir, "20250824_spec_summary.csv"))
	if len(summary) != 2 {
		t.Fatalf("summary rows = %d, want header + 1", len(summary))
	}
	if summary[1][0] != "CSSMP106B" || summary[1][4] != "40" {
		t.Errorf("summary row = %v, want CSSMP106B with 40 MT free for sale", summary[1])
	}

	heatmap := readCSV(t, filepath.Join(dir, "20250824_heatmap.csv"))
	if heatmap[0][0] != "OD" {
		t.Errorf("heatmap header starts with %q, want OD", heatmap[0][0])
	}
	stdCol := -1
	for j, label := range heatmap[0] {
		if label == "STD" {
			stdCol = j
		}
	}
	if stdCol < 0 {
		t.Fatalf("heatmap header %v missing STD column", heatmap[0])
	}
	var found bool
	for _, row := range heatmap[1:] {
		if row[0] == `10"` {
			found = true
			if row[stdCol] != "40" {
				t.Errorf(`10" STD cell = %q, want 40`, row[stdCol])
			}
		}
	}
	if !found {
		t.Errorf(`heatmap missing 10" row`)
	}
}

func TestRunFileSummaryHonorsReportSpecs(t *testing.T) {
	runner, dir := newTestRunner(t, config.ReportConfig{
		PriorityThresholdMT: 30,
		PriorityTopN:        15,
		ReportSpecs:         []string{"ASSMPP11"},
	})

	workbook := filepath.Join(dir, "20250824_inventory.xlsx")
	writeWorkbook(t, workbook, [][]interface{}{
		{"Specification", "OD", "WT", "MT"},
		{"CSSMP106B", 273.0, 9.27, 40.0},
		{"ASSMPP11", 273.0, 9.27, 12.0},
	})

	if err := runner.RunFile(context.Background(), workbook); err != nil {
		t.Fatalf("RunFile: %v", err)
	}

	summary := readCSV(t, filepath.Join(dir, "20250824_spec_summary.csv"))
	if len(summary) != 2 {
		t.Fatalf("summary rows = %d, want header + 1", len(summary))
	}
	if summary[1][0] != "ASSMPP11" {
		t.Errorf("summary spec = %q, want ASSMPP11", summary[1][0])
	}
}

func TestRunComparisonWritesCSV(t *testing.T) {
	runner, dir := newTestRunner(t, config.ReportConfig{
		PriorityThresholdMT: 30,
		PriorityTopN:        15,
	})

	oldWorkbook := filepath.Join(dir, "20250817_inventory.xlsx")
	writeWorkbook(t, oldWorkbook, [][]interface{}{
		{"Specification", "OD", "WT", "MT"},
		{"CSSMP106B", 273.0, 9.27, 10.0},
	})
	newWorkbook := filepath.Join(dir, "20250824_inventory.xlsx")
	writeWorkbook(t, newWorkbook, [][]interface{}{
		{"Specification", "OD", "WT", "MT"},
		{"CSSMP106B", 273.0, 9.27, 25.0},
	})

	if err := runner.RunComparison(context.Background(), oldWorkbook, newWorkbook); err != nil {
		t.Fatalf("RunComparison: %v", err)
	}

	records := readCSV(t, filepath.Join(dir, "20250817_vs_20250824_comparison.csv"))
	if len(records) != 2 {
		t.Fatalf("comparison rows = %d, want header + 1", len(records))
	}
	row := records[1]
	if row[1] != "CSSMP106B" {
		t.Errorf("spec = %q, want CSSMP106B", row[1])
	}
	if row[7] != "Increased" {
		t.Errorf("status = %q, want Increased", row[7])
	}
	if row[6] != "15" {
		t.Errorf("delta = %q, want 15", row[6])
	}
}
