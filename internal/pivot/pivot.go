// Package pivot builds the fixed-axis OD x WT-schedule heatmap table
// from classified inventory records.
package pivot

import (
	"github.com/andresuchdata/pipestock/backend-go/internal/aggregate"
	"github.com/andresuchdata/pipestock/backend-go/internal/classify"
	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
	"github.com/andresuchdata/pipestock/backend-go/internal/refdata"
)

// TotalLabel names the synthetic sum row and column.
const TotalLabel = "Total"

// Table is a dense pivot with fixed row and column order. The final row
// and column are the Total sums; values are rounded to 2 decimals.
type Table struct {
	RowLabels []string    `json:"row_labels"`
	ColLabels []string    `json:"col_labels"`
	Values    [][]float64 `json:"values"`
}

// Cell returns the value at (rowLabel, colLabel), with ok=false when
// either label is absent.
func (t *Table) Cell(rowLabel, colLabel string) (float64, bool) {
	row, col := -1, -1
	for i, l := range t.RowLabels {
		if l == rowLabel {
			row = i
			break
		}
	}
	for j, l := range t.ColLabels {
		if l == colLabel {
			col = j
			break
		}
	}
	if row < 0 || col < 0 {
		return 0, false
	}
	return t.Values[row][col], true
}

// Build produces the pivot of summed values per (ODCategory, WTSchedule)
// over the Cartesian skeleton of odOrder x wtOrder. Every supplied
// combination appears even with zero data; rows that carry no data at
// all are dropped to keep the table compact, but the Total row and
// column are always present. The supplied orders are used verbatim,
// never sorted.
func Build(records []domain.InventoryRecord, odOrder, wtOrder []string, valueOf func(domain.InventoryRecord) float64) *Table {
	if valueOf == nil {
		valueOf = func(r domain.InventoryRecord) float64 { return r.MT }
	}

	colIndex := make(map[string]int, len(wtOrder))
	for j, label := range wtOrder {
		colIndex[label] = j
	}
	rowIndex := make(map[string]int, len(odOrder))
	for i, label := range odOrder {
		rowIndex[label] = i
	}

	sums := make([][]float64, len(odOrder))
	for i := range sums {
		sums[i] = make([]float64, len(wtOrder))
	}
	hasData := make([]bool, len(odOrder))

	for _, rec := range records {
		i, okRow := rowIndex[rec.ODCategory]
		j, okCol := colIndex[rec.WTSchedule]
		if !okRow || !okCol {
			continue
		}
		sums[i][j] += valueOf(rec)
		hasData[i] = true
	}

	table := &Table{
		ColLabels: append(append([]string{}, wtOrder...), TotalLabel),
	}

	colTotals := make([]float64, len(wtOrder))
	for i, label := range odOrder {
		if !hasData[i] {
			continue
		}
		row := make([]float64, 0, len(wtOrder)+1)
		rowTotal := 0.0
		for j := range wtOrder {
			v := sums[i][j]
			rowTotal += v
			colTotals[j] += v
			row = append(row, aggregate.Round2(v))
		}
		row = append(row, aggregate.Round2(rowTotal))
		table.RowLabels = append(table.RowLabels, label)
		table.Values = append(table.Values, row)
	}

	totalRow := make([]float64, 0, len(wtOrder)+1)
	grandTotal := 0.0
	for _, v := range colTotals {
		grandTotal += v
		totalRow = append(totalRow, aggregate.Round2(v))
	}
	totalRow = append(totalRow, aggregate.Round2(grandTotal))
	table.RowLabels = append(table.RowLabels, TotalLabel)
	table.Values = append(table.Values, totalRow)

	return table
}

// familyOrder is the concatenation priority when several grade families
// appear in one filtered record set.
var familyOrder = []string{
	classify.GradeCombined,
	classify.GradeSS,
	classify.GradeIS,
	classify.GradeTubes,
}

// SchedulesFor returns the WT-schedule column order for the grade
// families present in grades, concatenated in family priority order
// without duplicates.
func SchedulesFor(grades []string, tables *refdata.Tables) []string {
	if tables == nil {
		tables = refdata.Default()
	}

	present := make(map[string]bool, len(grades))
	for _, g := range grades {
		present[g] = true
	}

	familySchedules := map[string][]string{
		classify.GradeCombined: tables.CarbonWTOrder,
		classify.GradeSS:       tables.SSWTOrder,
		classify.GradeIS:       tables.ISWTOrder,
		classify.GradeTubes:    tables.TubeWTOrder,
	}

	var (
		order []string
		seen  = make(map[string]bool)
	)
	for _, family := range familyOrder {
		if !present[family] {
			continue
		}
		for _, label := range familySchedules[family] {
			if seen[label] {
				continue
			}
			seen[label] = true
			order = append(order, label)
		}
	}
	return order
}
