package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
	"github.com/andresuchdata/pipestock/backend-go/internal/pivot"
)

// writeCSV writes a header plus rows to path, creating parent directories.
func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func formatMT(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteFreeForSaleCSV writes the aggregated Free-For-Sale view.
func WriteFreeForSaleCSV(path string, records []domain.AggregatedRecord) error {
	header := []string{
		"Specification", "OD", "WT", "Make", "Branch", "Add Spec",
		"Stock MT", "Reservations MT", "Incoming MT", "Free For Sale MT",
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Specification,
			formatMT(rec.OD),
			formatMT(rec.WT),
			rec.Make,
			rec.Branch,
			rec.AdditionalSpec,
			formatMT(rec.StockMT),
			formatMT(rec.ReservationsMT),
			formatMT(rec.IncomingMT),
			formatMT(rec.FreeForSaleMT),
		})
	}
	return writeCSV(path, header, rows)
}

// WritePriorityCSV writes the ranked priority list.
func WritePriorityCSV(path string, ranked []domain.RankedSpec) error {
	header := []string{"Rank", "Specification", "Total Free For Sale MT"}
	rows := make([][]string, 0, len(ranked))
	for i, spec := range ranked {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			spec.Specification,
			formatMT(spec.TotalFreeForSaleMT),
		})
	}
	return writeCSV(path, header, rows)
}

// WriteSpecSummaryCSV writes the per-specification report metrics.
func WriteSpecSummaryCSV(path string, summaries []domain.SpecSummary) error {
	header := []string{
		"Specification", "Stock MT", "Reservation MT", "Incoming MT", "Free For Sale MT",
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Specification,
			formatMT(s.StockMT),
			formatMT(s.ReservationMT),
			formatMT(s.IncomingMT),
			formatMT(s.FreeForSaleMT),
		})
	}
	return writeCSV(path, header, rows)
}

// WriteHeatmapCSV writes the OD x WT pivot, one row per OD category.
func WriteHeatmapCSV(path string, table *pivot.Table) error {
	header := append([]string{"OD"}, table.ColLabels...)
	rows := make([][]string, 0, len(table.RowLabels))
	for i, rowLabel := range table.RowLabels {
		row := make([]string, 0, len(table.ColLabels)+1)
		row = append(row, rowLabel)
		for j := range table.ColLabels {
			row = append(row, formatMT(table.Values[i][j]))
		}
		rows = append(rows, row)
	}
	return writeCSV(path, header, rows)
}

// WriteComparisonCSV writes a snapshot comparison.
func WriteComparisonCSV(path string, records []domain.ComparisonRecord) error {
	header := []string{
		"Key", "Specification", "OD", "WT",
		"Old MT", "New MT", "Delta", "Status", "Zero Difference",
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Key,
			rec.Specification,
			rec.OD,
			rec.WT,
			formatMT(rec.OldMT),
			formatMT(rec.NewMT),
			formatMT(rec.Delta),
			string(rec.Status),
			strconv.FormatBool(rec.IsZeroDifference),
		})
	}
	return writeCSV(path, header, rows)
}
