package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
)

// DeltaTolerance absorbs summation rounding noise: deltas at or below
// this magnitude classify as Unchanged.
const DeltaTolerance = 0.001

// Compare matches product keys (Specification|OD|WT) across two
// snapshots and classifies each key's movement. The result covers
// exactly the union of both files' keys, ordered by key.
func Compare(file1, file2 []domain.InventoryRecord) []domain.ComparisonRecord {
	sums1 := sumByKey(file1)
	sums2 := sumByKey(file2)

	keys := make(map[string]keyParts, len(sums1)+len(sums2))
	for k, v := range sums1 {
		keys[k] = v.parts
	}
	for k, v := range sums2 {
		keys[k] = v.parts
	}

	results := make([]domain.ComparisonRecord, 0, len(keys))
	for key, parts := range keys {
		old, inOld := sums1[key]
		new_, inNew := sums2[key]

		rec := domain.ComparisonRecord{
			Key:           key,
			Specification: parts.spec,
			OD:            parts.od,
			WT:            parts.wt,
		}

		switch {
		case !inOld && inNew:
			rec.NewMT = new_.mt
			rec.Delta = new_.mt
			rec.Status = domain.StatusAdded
		case inOld && !inNew:
			rec.OldMT = old.mt
			rec.Delta = -old.mt
			rec.Status = domain.StatusRemoved
		default:
			rec.OldMT = old.mt
			rec.NewMT = new_.mt
			delta := new_.mt - old.mt
			rec.Delta = Round3(delta)
			rec.Status = deltaStatus(delta)
			rec.IsZeroDifference = abs(old.mt) > DeltaTolerance &&
				abs(new_.mt) > DeltaTolerance &&
				abs(delta) <= DeltaTolerance
		}

		results = append(results, rec)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Key < results[j].Key
	})

	return results
}

func deltaStatus(delta float64) domain.ComparisonStatus {
	switch {
	case abs(delta) <= DeltaTolerance:
		return domain.StatusUnchanged
	case delta > DeltaTolerance:
		return domain.StatusIncreased
	default:
		return domain.StatusDecreased
	}
}

type keyParts struct {
	spec, od, wt string
}

type keySum struct {
	parts keyParts
	mt    float64
}

func sumByKey(records []domain.InventoryRecord) map[string]keySum {
	sums := make(map[string]keySum)
	for _, rec := range records {
		parts := keyParts{
			spec: strings.TrimSpace(rec.Specification),
			od:   formatDim(rec.OD),
			wt:   formatDim(rec.WT),
		}
		key := parts.spec + "|" + parts.od + "|" + parts.wt

		s := sums[key]
		s.parts = parts
		s.mt = Round3(s.mt + rec.MT)
		sums[key] = s
	}
	return sums
}

func formatDim(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(Round3(*v), 'f', -1, 64)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
