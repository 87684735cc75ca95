package aggregate

import (
	"testing"

	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
)

func f(v float64) *float64 { return &v }

func rec(spec string, od, wt, mt float64) domain.InventoryRecord {
	return domain.InventoryRecord{Specification: spec, OD: f(od), WT: f(wt), MT: mt}
}

func TestComputeFreeForSaleIdentity(t *testing.T) {
	stock := []domain.InventoryRecord{
		rec("CSSMP106B", 273.0, 9.27, 10),
		rec("CSSMP106B", 273.0, 9.27, 4.5),
		rec("ASSMPP11", 60.3, 3.91, 7),
	}
	reservations := []domain.InventoryRecord{
		rec("CSSMP106B", 273.0, 9.27, 3),
	}
	incoming := []domain.InventoryRecord{
		rec("CSSMP106B", 273.0, 9.27, 5),
		rec("SSSMP312", 114.3, 6.02, 2.25),
	}

	results := ComputeFreeForSale(stock, reservations, incoming)
	if len(results) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(results))
	}

	for _, agg := range results {
		want := Round3(agg.StockMT - agg.ReservationsMT + agg.IncomingMT)
		if agg.FreeForSaleMT != want {
			t.Errorf("%s: FreeForSale = %v, want %v", agg.Specification, agg.FreeForSaleMT, want)
		}
	}

	var cs domain.AggregatedRecord
	for _, agg := range results {
		if agg.Specification == "CSSMP106B" {
			cs = agg
		}
	}
	if cs.StockMT != 14.5 || cs.ReservationsMT != 3 || cs.IncomingMT != 5 {
		t.Fatalf("unexpected CS sums: %+v", cs)
	}
	if cs.FreeForSaleMT != 16.5 {
		t.Fatalf("FreeForSale = %v, want 16.5", cs.FreeForSaleMT)
	}
}

func TestComputeFreeForSaleOrderIndependence(t *testing.T) {
	a := []domain.InventoryRecord{
		rec("A", 273.0, 9.27, 1.125),
		rec("A", 273.0, 9.27, 2.25),
		rec("B", 60.3, 3.91, 3.5),
	}
	reversed := []domain.InventoryRecord{a[2], a[1], a[0]}

	r1 := ComputeFreeForSale(a, nil, nil)
	r2 := ComputeFreeForSale(reversed, nil, nil)

	if len(r1) != len(r2) {
		t.Fatalf("group counts differ: %d vs %d", len(r1), len(r2))
	}
	for i := range r1 {
		if r1[i] != r2[i] {
			t.Errorf("group %d differs: %+v vs %+v", i, r1[i], r2[i])
		}
	}
}

func TestComputeFreeForSaleKeyAlignment(t *testing.T) {
	// The same product spelled with float representation noise across
	// sheets must land in one group after 3-decimal rounding.
	stock := []domain.InventoryRecord{rec("A", 273.0001, 9.27, 10)}
	incoming := []domain.InventoryRecord{rec("A", 273.0, 9.2699999, 5)}

	results := ComputeFreeForSale(stock, nil, incoming)
	if len(results) != 1 {
		t.Fatalf("expected 1 group, got %d", len(results))
	}
	if results[0].FreeForSaleMT != 15 {
		t.Fatalf("FreeForSale = %v, want 15", results[0].FreeForSaleMT)
	}
}

func TestComputeFreeForSaleSkipsDimensionlessRows(t *testing.T) {
	stock := []domain.InventoryRecord{
		{Specification: "A", OD: nil, WT: f(9.27), MT: 10},
		{Specification: "A", OD: f(273.0), WT: nil, MT: 10},
		rec("A", 273.0, 9.27, 1),
	}

	results := ComputeFreeForSale(stock, nil, nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 group, got %d", len(results))
	}
	if results[0].StockMT != 1 {
		t.Fatalf("StockMT = %v, want 1", results[0].StockMT)
	}
}

func TestSummarizeSpecs(t *testing.T) {
	aggs := []domain.AggregatedRecord{
		{Specification: "A", StockMT: 10.125, ReservationsMT: 2, IncomingMT: 1, FreeForSaleMT: 9.125},
		{Specification: "A", StockMT: 5, ReservationsMT: 1, IncomingMT: 0, FreeForSaleMT: 4},
		{Specification: "B", StockMT: 3, FreeForSaleMT: 3},
	}

	summaries := SummarizeSpecs(aggs)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	a := summaries[0]
	if a.Specification != "A" {
		t.Fatalf("expected A first, got %q", a.Specification)
	}
	if a.StockMT != 15.13 {
		t.Errorf("StockMT = %v, want 15.13", a.StockMT)
	}
	if a.FreeForSaleMT != 13.13 {
		t.Errorf("FreeForSaleMT = %v, want 13.13", a.FreeForSaleMT)
	}
}
