package priority

import (
	"testing"

	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
)

func rec(spec string, mt float64) domain.InventoryRecord {
	return domain.InventoryRecord{Specification: spec, MT: mt}
}

func TestRankThresholdBoundary(t *testing.T) {
	stock := []domain.InventoryRecord{
		rec("A", 50),
		rec("B", 30),
		rec("C", 29.999),
		rec("D", -5),
	}

	got := Rank(stock, nil, nil, 30, 15)

	if len(got) != 2 {
		t.Fatalf("expected 2 ranked specs, got %d: %+v", len(got), got)
	}
	if got[0].Specification != "A" || got[0].TotalFreeForSaleMT != 50 {
		t.Errorf("rank 1 = %+v, want A/50", got[0])
	}
	if got[1].Specification != "B" || got[1].TotalFreeForSaleMT != 30 {
		t.Errorf("rank 2 = %+v, want B/30", got[1])
	}
}

func TestRankOuterUnion(t *testing.T) {
	stock := []domain.InventoryRecord{rec("ONLYSTOCK", 40)}
	reservations := []domain.InventoryRecord{rec("ONLYRES", 10)}
	incoming := []domain.InventoryRecord{rec("ONLYINC", 45)}

	got := Rank(stock, reservations, incoming, 30, 15)

	if len(got) != 2 {
		t.Fatalf("expected 2 specs, got %+v", got)
	}
	if got[0].Specification != "ONLYINC" || got[0].TotalFreeForSaleMT != 45 {
		t.Errorf("rank 1 = %+v, want ONLYINC/45", got[0])
	}
	if got[1].Specification != "ONLYSTOCK" || got[1].TotalFreeForSaleMT != 40 {
		t.Errorf("rank 2 = %+v, want ONLYSTOCK/40", got[1])
	}
}

func TestRankCombinesSources(t *testing.T) {
	stock := []domain.InventoryRecord{rec("X", 20), rec("X", 5)}
	reservations := []domain.InventoryRecord{rec("X", 3)}
	incoming := []domain.InventoryRecord{rec("X", 10)}

	got := Rank(stock, reservations, incoming, 30, 15)

	if len(got) != 1 {
		t.Fatalf("expected 1 spec, got %+v", got)
	}
	if got[0].TotalFreeForSaleMT != 32 {
		t.Errorf("total = %v, want 32", got[0].TotalFreeForSaleMT)
	}
}

func TestRankTruncatesTopN(t *testing.T) {
	stock := []domain.InventoryRecord{
		rec("A", 100), rec("B", 90), rec("C", 80), rec("D", 70),
	}

	got := Rank(stock, nil, nil, 30, 2)

	if len(got) != 2 {
		t.Fatalf("expected 2 specs after truncation, got %+v", got)
	}
	if got[0].Specification != "A" || got[1].Specification != "B" {
		t.Errorf("top 2 = %s, %s; want A, B", got[0].Specification, got[1].Specification)
	}
}

func TestRankTieBreaksBySpec(t *testing.T) {
	stock := []domain.InventoryRecord{rec("ZZ", 50), rec("AA", 50)}

	got := Rank(stock, nil, nil, 30, 15)

	if len(got) != 2 || got[0].Specification != "AA" || got[1].Specification != "ZZ" {
		t.Errorf("tie order = %+v, want AA before ZZ", got)
	}
}

func TestRankEmptyWhenNothingClears(t *testing.T) {
	stock := []domain.InventoryRecord{rec("A", 5)}

	got := Rank(stock, nil, nil, 30, 15)

	if len(got) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}
