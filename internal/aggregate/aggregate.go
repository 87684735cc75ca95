// Package aggregate computes the derived inventory metrics: Free-For-Sale
// quantities grouped by product identity, per-specification summaries,
// and period-over-period snapshot comparisons.
package aggregate

import (
	"math"
	"sort"

	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
)

// Round3 rounds to 3 decimals, the precision product keys and MT sums
// are aligned at across sheets.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Round2 rounds to 2 decimals for display values.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type groupKey struct {
	spec string
	od   float64
	wt   float64
}

// ComputeFreeForSale tags each record set by its source sheet, groups by
// (Specification, OD, WT) with OD/WT rounded to 3 decimals, pivots the
// summed MT per source and derives Free_For_Sale = Stock - Reservations
// + Incoming. Make, Branch and AdditionalSpec are carried through from
// the first occurrence per group. Records without a numeric OD or WT
// cannot form a product key and are excluded from the grouping.
func ComputeFreeForSale(stock, reservations, incoming []domain.InventoryRecord) []domain.AggregatedRecord {
	groups := make(map[groupKey]*domain.AggregatedRecord)

	accumulate := func(records []domain.InventoryRecord, source domain.SourceType) {
		for _, rec := range records {
			if rec.OD == nil || rec.WT == nil {
				continue
			}
			key := groupKey{
				spec: rec.Specification,
				od:   Round3(*rec.OD),
				wt:   Round3(*rec.WT),
			}

			agg, ok := groups[key]
			if !ok {
				agg = &domain.AggregatedRecord{
					Specification:  key.spec,
					OD:             key.od,
					WT:             key.wt,
					Make:           rec.Make,
					Branch:         rec.Branch,
					AdditionalSpec: rec.AdditionalSpec,
				}
				groups[key] = agg
			}

			switch source {
			case domain.SourceStock:
				agg.StockMT += rec.MT
			case domain.SourceReservations:
				agg.ReservationsMT += rec.MT
			case domain.SourceIncoming:
				agg.IncomingMT += rec.MT
			}
		}
	}

	accumulate(stock, domain.SourceStock)
	accumulate(reservations, domain.SourceReservations)
	accumulate(incoming, domain.SourceIncoming)

	results := make([]domain.AggregatedRecord, 0, len(groups))
	for _, agg := range groups {
		agg.StockMT = Round3(agg.StockMT)
		agg.ReservationsMT = Round3(agg.ReservationsMT)
		agg.IncomingMT = Round3(agg.IncomingMT)
		agg.FreeForSaleMT = Round3(agg.StockMT - agg.ReservationsMT + agg.IncomingMT)
		results = append(results, *agg)
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Specification != b.Specification {
			return a.Specification < b.Specification
		}
		if a.OD != b.OD {
			return a.OD < b.OD
		}
		return a.WT < b.WT
	})

	return results
}

// SummarizeSpecs reduces aggregated records to per-specification report
// metrics, rounded to 2 decimals, ordered by specification.
func SummarizeSpecs(records []domain.AggregatedRecord) []domain.SpecSummary {
	bySpec := make(map[string]*domain.SpecSummary)
	for _, rec := range records {
		s, ok := bySpec[rec.Specification]
		if !ok {
			s = &domain.SpecSummary{Specification: rec.Specification}
			bySpec[rec.Specification] = s
		}
		s.StockMT += rec.StockMT
		s.ReservationMT += rec.ReservationsMT
		s.IncomingMT += rec.IncomingMT
		s.FreeForSaleMT += rec.FreeForSaleMT
	}

	results := make([]domain.SpecSummary, 0, len(bySpec))
	for _, s := range bySpec {
		s.StockMT = Round2(s.StockMT)
		s.ReservationMT = Round2(s.ReservationMT)
		s.IncomingMT = Round2(s.IncomingMT)
		s.FreeForSaleMT = Round2(s.FreeForSaleMT)
		results = append(results, *s)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Specification < results[j].Specification
	})

	return results
}
