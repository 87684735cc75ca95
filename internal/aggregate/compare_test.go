package aggregate

import (
	"testing"

	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
)

func TestCompareKeyCompleteness(t *testing.T) {
	file1 := []domain.InventoryRecord{
		rec("A", 273.0, 9.27, 10),
		rec("B", 60.3, 3.91, 5),
		rec("C", 114.3, 6.02, 2),
	}
	file2 := []domain.InventoryRecord{
		rec("A", 273.0, 9.27, 12),
		rec("B", 60.3, 3.91, 5),
		rec("D", 21.3, 2.77, 1),
	}

	results := Compare(file1, file2)

	keys := make(map[string]domain.ComparisonStatus)
	for _, r := range results {
		if !r.Status.Valid() {
			t.Errorf("key %s has invalid status %q", r.Key, r.Status)
		}
		keys[r.Key] = r.Status
	}

	if len(keys) != 4 {
		t.Fatalf("expected union of 4 keys, got %d", len(keys))
	}

	expected := map[string]domain.ComparisonStatus{
		"A|273|9.27": domain.StatusIncreased,
		"B|60.3|3.91": domain.StatusUnchanged,
		"C|114.3|6.02": domain.StatusRemoved,
		"D|21.3|2.77": domain.StatusAdded,
	}
	for key, want := range expected {
		if got, ok := keys[key]; !ok {
			t.Errorf("key %s missing from result", key)
		} else if got != want {
			t.Errorf("key %s: status = %q, want %q", key, got, want)
		}
	}
}

func TestCompareStatuses(t *testing.T) {
	file1 := []domain.InventoryRecord{
		rec("UP", 273.0, 9.27, 10),
		rec("DOWN", 60.3, 3.91, 8),
		rec("SAME", 114.3, 6.02, 3),
		rec("GONE", 21.3, 2.77, 1),
	}
	file2 := []domain.InventoryRecord{
		rec("UP", 273.0, 9.27, 12.5),
		rec("DOWN", 60.3, 3.91, 6),
		rec("SAME", 114.3, 6.02, 3),
		rec("NEW", 48.3, 3.68, 4),
	}

	byStatus := make(map[domain.ComparisonStatus]domain.ComparisonRecord)
	for _, r := range Compare(file1, file2) {
		byStatus[r.Status] = r
	}

	if r := byStatus[domain.StatusIncreased]; r.Specification != "UP" || r.Delta != 2.5 {
		t.Errorf("Increased: %+v", r)
	}
	if r := byStatus[domain.StatusDecreased]; r.Specification != "DOWN" || r.Delta != -2 {
		t.Errorf("Decreased: %+v", r)
	}
	if r := byStatus[domain.StatusUnchanged]; r.Specification != "SAME" || !r.IsZeroDifference {
		t.Errorf("Unchanged: %+v", r)
	}
	if r := byStatus[domain.StatusRemoved]; r.Specification != "GONE" || r.Delta != -1 {
		t.Errorf("Removed: %+v", r)
	}
	if r := byStatus[domain.StatusAdded]; r.Specification != "NEW" || r.Delta != 4 || r.IsZeroDifference {
		t.Errorf("Added: %+v", r)
	}
}

func TestDeltaToleranceBoundary(t *testing.T) {
	tests := []struct {
		delta    float64
		expected domain.ComparisonStatus
	}{
		{0.0011, domain.StatusIncreased},
		{-0.0011, domain.StatusDecreased},
		{0.0009, domain.StatusUnchanged},
		{-0.0009, domain.StatusUnchanged},
		{0, domain.StatusUnchanged},
		{0.002, domain.StatusIncreased},
		{-5, domain.StatusDecreased},
	}

	for _, tt := range tests {
		if got := deltaStatus(tt.delta); got != tt.expected {
			t.Errorf("deltaStatus(%v) = %q, want %q", tt.delta, got, tt.expected)
		}
	}
}

func TestCompareZeroDifferenceSemantics(t *testing.T) {
	// Both sides effectively zero: Unchanged but not a genuine zero
	// difference.
	file1 := []domain.InventoryRecord{rec("A", 273.0, 9.27, 0.0005)}
	file2 := []domain.InventoryRecord{rec("A", 273.0, 9.27, 0.0005)}

	results := Compare(file1, file2)
	if len(results) != 1 {
		t.Fatalf("expected 1 record, got %d", len(results))
	}
	r := results[0]
	if r.Status != domain.StatusUnchanged {
		t.Fatalf("status = %q, want Unchanged", r.Status)
	}
	if r.IsZeroDifference {
		t.Fatal("both-effectively-zero pair must not count as a zero difference")
	}
}

func TestCompareAggregatesDuplicateKeys(t *testing.T) {
	file1 := []domain.InventoryRecord{
		rec("A", 273.0, 9.27, 4),
		rec("A", 273.0, 9.27, 6),
	}
	file2 := []domain.InventoryRecord{rec("A", 273.0, 9.27, 10)}

	results := Compare(file1, file2)
	if len(results) != 1 {
		t.Fatalf("expected 1 record, got %d", len(results))
	}
	if results[0].Status != domain.StatusUnchanged {
		t.Fatalf("status = %q, want Unchanged", results[0].Status)
	}
	if !results[0].IsZeroDifference {
		t.Fatal("expected a genuine zero difference")
	}
}
