// Package ingest parses inventory snapshot workbooks into domain records.
//
// A snapshot workbook carries up to three sheets, Stock, Incoming and
// Reservations, each with a header row followed by one inventory row per
// line. Header names arrive in many spellings depending on who exported
// the file, so columns are matched after normalization rather than by
// exact name.
package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/pipestock/backend-go/internal/aggregate"
	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
)

// MissingColumnsError reports required columns absent from a sheet header.
type MissingColumnsError struct {
	Sheet   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("sheet %s is missing required columns: %s", e.Sheet, strings.Join(e.Columns, ", "))
}

// ReadSnapshot opens an XLSX workbook from disk and parses its snapshot
// sheets. The Stock sheet is required; Incoming and Reservations default
// to empty when the sheet does not exist.
func ReadSnapshot(path string) (*domain.SnapshotData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()
	return readWorkbook(f)
}

// ReadSnapshotFrom parses a snapshot workbook from a reader, typically a
// download stream from object storage or Drive.
func ReadSnapshotFrom(r io.Reader) (*domain.SnapshotData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx stream: %w", err)
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) (*domain.SnapshotData, error) {
	stockSheet, ok := findSheet(f, "stock")
	if !ok {
		return nil, fmt.Errorf("workbook has no Stock sheet (sheets: %s)", strings.Join(f.GetSheetList(), ", "))
	}

	snap := &domain.SnapshotData{}

	var err error
	if snap.Stock, err = readSheet(f, stockSheet); err != nil {
		return nil, err
	}
	if sheet, ok := findSheet(f, "incoming"); ok {
		if snap.Incoming, err = readSheet(f, sheet); err != nil {
			return nil, err
		}
	}
	if sheet, ok := findSheet(f, "reservations"); ok {
		if snap.Reservations, err = readSheet(f, sheet); err != nil {
			return nil, err
		}
	}

	return snap, nil
}

// findSheet matches a sheet by normalized name, preferring an exact match
// over a substring one ("Incoming Pipes" still resolves to incoming).
func findSheet(f *excelize.File, want string) (string, bool) {
	for _, sheet := range f.GetSheetList() {
		if normalizeColumnName(sheet) == want {
			return sheet, true
		}
	}
	for _, sheet := range f.GetSheetList() {
		if strings.Contains(normalizeColumnName(sheet), want) {
			return sheet, true
		}
	}
	return "", false
}

func readSheet(f *excelize.File, sheet string) ([]domain.InventoryRecord, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Error()
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read header from sheet %s: %w", sheet, err)
	}

	colIndex := func(names ...string) int {
		targets := make(map[string]struct{}, len(names))
		for _, name := range names {
			targets[normalizeColumnName(name)] = struct{}{}
		}
		for i, h := range header {
			if _, ok := targets[normalizeColumnName(h)]; ok {
				return i
			}
		}
		return -1
	}

	idxSpec := colIndex("specification", "spec")
	idxOD := colIndex("od", "od mm")
	idxWT := colIndex("wt", "wt mm")
	idxMake := colIndex("make")
	idxBranch := colIndex("branch", "location")
	idxAddSpec := colIndex("add spec", "add. spec", "additional spec", "add_spec")

	// Exports sometimes carry two MT columns (ordered vs confirmed tonnage);
	// the later one is authoritative.
	idxMT := -1
	for i, h := range header {
		name := normalizeColumnName(h)
		if name == "mt" || name == "mt1" || name == "mtton" {
			idxMT = i
		}
	}

	var missing []string
	if idxSpec < 0 {
		missing = append(missing, "Specification")
	}
	if idxOD < 0 {
		missing = append(missing, "OD")
	}
	if idxWT < 0 {
		missing = append(missing, "WT")
	}
	if idxMT < 0 {
		missing = append(missing, "MT")
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Sheet: sheet, Columns: missing}
	}

	records := make([]domain.InventoryRecord, 0)
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from sheet %s: %w", sheet, err)
		}

		get := func(idx int) string {
			if idx < 0 || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		spec := get(idxSpec)
		if spec == "" && get(idxMT) == "" {
			continue
		}

		mt, _ := parseFloat(get(idxMT))

		rec := domain.InventoryRecord{
			Specification:  spec,
			OD:             parseDim(get(idxOD)),
			WT:             parseDim(get(idxWT)),
			MT:             mt,
			Make:           get(idxMake),
			Branch:         get(idxBranch),
			AdditionalSpec: get(idxAddSpec),
		}
		records = append(records, rec)
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in sheet %s: %w", sheet, err)
	}

	return records, nil
}

// parseDim coerces an OD/WT cell to a rounded measurement. Blank and
// non-numeric cells become nil so classification can report them as
// non-standard instead of treating them as zero.
func parseDim(v string) *float64 {
	f, ok := parseFloat(v)
	if !ok {
		return nil
	}
	f = aggregate.Round3(f)
	return &f
}

func parseFloat(v string) (float64, bool) {
	if v == "" {
		return 0, false
	}
	v = strings.ReplaceAll(v, ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}
