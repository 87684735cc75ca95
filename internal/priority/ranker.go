// Package priority produces the top-N list of specifications whose total
// Free-For-Sale tonnage clears a threshold.
package priority

import (
	"sort"

	"github.com/andresuchdata/pipestock/backend-go/internal/aggregate"
	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
)

// Defaults used by the report runner when nothing is configured.
const (
	DefaultThresholdMT = 30.0
	DefaultTopN        = 15
)

// Rank sums MT per specification independently for each source, takes
// the outer union of specifications, computes
// Total = Stock + Incoming - Reservation, keeps totals at or above
// thresholdMT, sorts descending and truncates to topN. An empty result
// is returned, not an error, when nothing clears the threshold.
func Rank(stock, reservations, incoming []domain.InventoryRecord, thresholdMT float64, topN int) []domain.RankedSpec {
	stockSums := sumBySpec(stock)
	resSums := sumBySpec(reservations)
	incSums := sumBySpec(incoming)

	specs := make(map[string]struct{})
	for s := range stockSums {
		specs[s] = struct{}{}
	}
	for s := range resSums {
		specs[s] = struct{}{}
	}
	for s := range incSums {
		specs[s] = struct{}{}
	}

	ranked := make([]domain.RankedSpec, 0, len(specs))
	for spec := range specs {
		total := aggregate.Round3(stockSums[spec] + incSums[spec] - resSums[spec])
		if total < thresholdMT {
			continue
		}
		ranked = append(ranked, domain.RankedSpec{
			Specification:      spec,
			TotalFreeForSaleMT: total,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalFreeForSaleMT != ranked[j].TotalFreeForSaleMT {
			return ranked[i].TotalFreeForSaleMT > ranked[j].TotalFreeForSaleMT
		}
		return ranked[i].Specification < ranked[j].Specification
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func sumBySpec(records []domain.InventoryRecord) map[string]float64 {
	sums := make(map[string]float64, len(records))
	for _, rec := range records {
		sums[rec.Specification] += rec.MT
	}
	return sums
}
