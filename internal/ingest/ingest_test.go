package ingest

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook assembles an in-memory XLSX with the given sheets, each a
// header row followed by data rows.
func buildWorkbook(t *testing.T, sheets map[string][][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("new sheet %s: %v", name, err)
			}
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestReadSnapshotFrom(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]interface{}{
		"Stock": {
			{"Specification", "OD", "WT", "MT", "Make", "Branch", "Add. Spec"},
			{"CSSMP106B", 273.0, 9.27, 14.5, "SeAH", "Jebel Ali", "NACE"},
			{"ASSMPP11", 60.3, 5.54, 3.25, "", "", ""},
		},
		"Incoming": {
			{"Specification", "OD", "WT", "MT"},
			{"CSSMP106B", 273.0, 9.27, 5.0},
		},
		"Reservations": {
			{"Specification", "OD", "WT", "MT"},
			{"CSSMP106B", 273.0, 9.27, 3.0},
		},
	})

	snap, err := ReadSnapshotFrom(buf)
	if err != nil {
		t.Fatalf("ReadSnapshotFrom: %v", err)
	}

	if len(snap.Stock) != 2 {
		t.Fatalf("stock rows = %d, want 2", len(snap.Stock))
	}
	first := snap.Stock[0]
	if first.Specification != "CSSMP106B" {
		t.Errorf("spec = %q", first.Specification)
	}
	if first.OD == nil || *first.OD != 273.0 {
		t.Errorf("od = %v, want 273.0", first.OD)
	}
	if first.WT == nil || *first.WT != 9.27 {
		t.Errorf("wt = %v, want 9.27", first.WT)
	}
	if first.MT != 14.5 {
		t.Errorf("mt = %v, want 14.5", first.MT)
	}
	if first.Make != "SeAH" || first.Branch != "Jebel Ali" || first.AdditionalSpec != "NACE" {
		t.Errorf("descriptors = %q/%q/%q", first.Make, first.Branch, first.AdditionalSpec)
	}

	if len(snap.Incoming) != 1 || snap.Incoming[0].MT != 5.0 {
		t.Errorf("incoming = %+v", snap.Incoming)
	}
	if len(snap.Reservations) != 1 || snap.Reservations[0].MT != 3.0 {
		t.Errorf("reservations = %+v", snap.Reservations)
	}
}

func TestReadSnapshotSheetNamesAreFlexible(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]interface{}{
		"STOCK LIST": {
			{"Specification", "OD", "WT", "MT"},
			{"CSSMP106B", 273.0, 9.27, 1.0},
		},
		"incoming pipes": {
			{"Specification", "OD", "WT", "MT"},
			{"CSSMP106B", 273.0, 9.27, 2.0},
		},
	})

	snap, err := ReadSnapshotFrom(buf)
	if err != nil {
		t.Fatalf("ReadSnapshotFrom: %v", err)
	}
	if len(snap.Stock) != 1 {
		t.Errorf("stock rows = %d, want 1", len(snap.Stock))
	}
	if len(snap.Incoming) != 1 {
		t.Errorf("incoming rows = %d, want 1", len(snap.Incoming))
	}
	if len(snap.Reservations) != 0 {
		t.Errorf("reservations should default to empty, got %+v", snap.Reservations)
	}
}

func TestReadSnapshotDuplicateMTColumns(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]interface{}{
		"Stock": {
			{"Specification", "OD", "WT", "MT", "MT.1"},
			{"CSSMP106B", 273.0, 9.27, 10.0, 12.5},
		},
	})

	snap, err := ReadSnapshotFrom(buf)
	if err != nil {
		t.Fatalf("ReadSnapshotFrom: %v", err)
	}
	if len(snap.Stock) != 1 {
		t.Fatalf("stock rows = %d, want 1", len(snap.Stock))
	}
	if snap.Stock[0].MT != 12.5 {
		t.Errorf("mt = %v, want the later column's 12.5", snap.Stock[0].MT)
	}
}

func TestReadSnapshotDimensionCoercion(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]interface{}{
		"Stock": {
			{"Specification", "OD", "WT", "MT"},
			{"A", "", 9.2735, ""},
			{"B", "n/a", 5.54, 3.0},
		},
	})

	snap, err := ReadSnapshotFrom(buf)
	if err != nil {
		t.Fatalf("ReadSnapshotFrom: %v", err)
	}
	if len(snap.Stock) != 2 {
		t.Fatalf("stock rows = %d, want 2", len(snap.Stock))
	}

	if snap.Stock[0].OD != nil {
		t.Errorf("blank od should be nil, got %v", *snap.Stock[0].OD)
	}
	if snap.Stock[0].WT == nil || *snap.Stock[0].WT != 9.274 {
		t.Errorf("wt = %v, want rounded 9.274", snap.Stock[0].WT)
	}
	if snap.Stock[0].MT != 0 {
		t.Errorf("blank mt should parse as 0, got %v", snap.Stock[0].MT)
	}
	if snap.Stock[1].OD != nil {
		t.Errorf("non-numeric od should be nil, got %v", *snap.Stock[1].OD)
	}
}

func TestReadSnapshotMissingColumns(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]interface{}{
		"Stock": {
			{"Specification", "OD"},
			{"A", 273.0},
		},
	})

	_, err := ReadSnapshotFrom(buf)
	if err == nil {
		t.Fatal("expected missing columns error")
	}
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("error type = %T, want *MissingColumnsError", err)
	}
	if len(missing.Columns) != 2 {
		t.Errorf("missing columns = %v, want WT and MT", missing.Columns)
	}
}

func TestReadSnapshotMissingStockSheet(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]interface{}{
		"Incoming": {
			{"Specification", "OD", "WT", "MT"},
			{"A", 273.0, 9.27, 1.0},
		},
	})

	if _, err := ReadSnapshotFrom(buf); err == nil {
		t.Fatal("expected error for workbook without a Stock sheet")
	}
}
