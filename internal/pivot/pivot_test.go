package pivot

import (
	"testing"

	"github.com/andresuchdata/pipestock/backend-go/internal/classify"
	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
)

func rec(odCat, wtSched string, mt float64) domain.InventoryRecord {
	return domain.InventoryRecord{ODCategory: odCat, WTSchedule: wtSched, MT: mt}
}

func TestBuildTotals(t *testing.T) {
	odOrder := []string{`2"`, `4"`, `10"`}
	wtOrder := []string{"STD", "XS"}

	records := []domain.InventoryRecord{
		rec(`2"`, "STD", 1.5),
		rec(`2"`, "XS", 2),
		rec(`10"`, "STD", 4),
		rec(`10"`, "STD", 0.5),
	}

	table := Build(records, odOrder, wtOrder, nil)

	// 4" has no data and is dropped; 2", 10" and Total remain.
	wantRows := []string{`2"`, `10"`, TotalLabel}
	if len(table.RowLabels) != len(wantRows) {
		t.Fatalf("rows = %v, want %v", table.RowLabels, wantRows)
	}
	for i, label := range wantRows {
		if table.RowLabels[i] != label {
			t.Fatalf("rows = %v, want %v", table.RowLabels, wantRows)
		}
	}

	wantCols := []string{"STD", "XS", TotalLabel}
	for i, label := range wantCols {
		if table.ColLabels[i] != label {
			t.Fatalf("cols = %v, want %v", table.ColLabels, wantCols)
		}
	}

	checks := []struct {
		row, col string
		want     float64
	}{
		{`2"`, "STD", 1.5},
		{`2"`, "XS", 2},
		{`2"`, TotalLabel, 3.5},
		{`10"`, "STD", 4.5},
		{`10"`, "XS", 0},
		{`10"`, TotalLabel, 4.5},
		{TotalLabel, "STD", 6},
		{TotalLabel, "XS", 2},
		{TotalLabel, TotalLabel, 8},
	}
	for _, c := range checks {
		got, ok := table.Cell(c.row, c.col)
		if !ok {
			t.Fatalf("cell (%s, %s) missing", c.row, c.col)
		}
		if got != c.want {
			t.Errorf("cell (%s, %s) = %v, want %v", c.row, c.col, got, c.want)
		}
	}
}

func TestBuildTotalConsistency(t *testing.T) {
	odOrder := []string{`1"`, `2"`, `3"`}
	wtOrder := []string{"SCH 10", "SCH 40", "SCH 80"}

	records := []domain.InventoryRecord{
		rec(`1"`, "SCH 10", 1.11),
		rec(`1"`, "SCH 40", 2.22),
		rec(`2"`, "SCH 40", 3.33),
		rec(`3"`, "SCH 80", 4.44),
	}

	table := Build(records, odOrder, wtOrder, nil)

	for i, rowLabel := range table.RowLabels {
		if rowLabel == TotalLabel {
			continue
		}
		sum := 0.0
		for j := 0; j < len(table.ColLabels)-1; j++ {
			sum += table.Values[i][j]
		}
		total := table.Values[i][len(table.ColLabels)-1]
		if diff := sum - total; diff > 0.005 || diff < -0.005 {
			t.Errorf("row %s: total %v does not match sum %v", rowLabel, total, sum)
		}
	}

	totalRow := table.Values[len(table.RowLabels)-1]
	for j, colLabel := range table.ColLabels {
		if colLabel == TotalLabel {
			continue
		}
		sum := 0.0
		for i := 0; i < len(table.RowLabels)-1; i++ {
			sum += table.Values[i][j]
		}
		if diff := sum - totalRow[j]; diff > 0.005 || diff < -0.005 {
			t.Errorf("col %s: total %v does not match sum %v", colLabel, totalRow[j], sum)
		}
	}
}

func TestBuildEmptyInput(t *testing.T) {
	table := Build(nil, []string{`2"`}, []string{"STD"}, nil)

	if len(table.RowLabels) != 1 || table.RowLabels[0] != TotalLabel {
		t.Fatalf("expected only the Total row, got %v", table.RowLabels)
	}
	if v, _ := table.Cell(TotalLabel, TotalLabel); v != 0 {
		t.Fatalf("grand total = %v, want 0", v)
	}
}

func TestBuildPreservesSuppliedOrder(t *testing.T) {
	// Deliberately non-alphabetical order must survive verbatim.
	odOrder := []string{`10"`, `2"`, `1/8"`}
	records := []domain.InventoryRecord{
		rec(`1/8"`, "STD", 1),
		rec(`10"`, "STD", 1),
		rec(`2"`, "STD", 1),
	}

	table := Build(records, odOrder, []string{"STD"}, nil)

	want := []string{`10"`, `2"`, `1/8"`, TotalLabel}
	for i, label := range want {
		if table.RowLabels[i] != label {
			t.Fatalf("rows = %v, want %v", table.RowLabels, want)
		}
	}
}

func TestSchedulesFor(t *testing.T) {
	t.Run("single family", func(t *testing.T) {
		order := SchedulesFor([]string{classify.GradeCombined}, nil)
		if len(order) == 0 || order[0] != "SCH 10" {
			t.Fatalf("unexpected carbon order: %v", order)
		}
	})

	t.Run("families concatenate in priority order", func(t *testing.T) {
		order := SchedulesFor([]string{classify.GradeTubes, classify.GradeCombined}, nil)
		if order[0] != "SCH 10" {
			t.Fatalf("carbon schedules must come first, got %v", order[0])
		}
		if order[len(order)-1] != "Non-Standard Tube" {
			t.Fatalf("tube schedules must come last, got %v", order[len(order)-1])
		}
	})

	t.Run("no duplicates across families", func(t *testing.T) {
		order := SchedulesFor([]string{classify.GradeCombined, classify.GradeSS}, nil)
		seen := make(map[string]int)
		for _, label := range order {
			seen[label]++
		}
		// SCH XXS and Non STD appear in both carbon and stainless orders.
		for label, n := range seen {
			if n > 1 {
				t.Errorf("label %q appears %d times", label, n)
			}
		}
	})

	t.Run("unknown family yields empty order", func(t *testing.T) {
		if order := SchedulesFor([]string{"Unknown"}, nil); len(order) != 0 {
			t.Fatalf("expected empty order, got %v", order)
		}
	})
}
