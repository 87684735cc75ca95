// backend-go/internal/domain/models.go
package domain

import "time"

// SourceType identifies which snapshot sheet a record came from.
type SourceType string

const (
	SourceStock        SourceType = "Stock"
	SourceIncoming     SourceType = "Incoming"
	SourceReservations SourceType = "Reservations"
)

// InventoryRecord is one line item from a snapshot sheet after ingestion.
// OD and WT are nil when the source cell is empty or non-numeric; MT is
// coerced to 0 in that case. Grade, ODCategory and WTSchedule are filled
// by the classifiers and are never empty afterwards: unclassifiable
// inputs resolve to a family sentinel label, not to a missing value.
type InventoryRecord struct {
	Specification  string   `json:"specification" db:"specification"`
	OD             *float64 `json:"od" db:"od"`
	WT             *float64 `json:"wt" db:"wt"`
	MT             float64  `json:"mt" db:"mt"`
	Make           string   `json:"make" db:"make"`
	Branch         string   `json:"branch" db:"branch"`
	AdditionalSpec string   `json:"additional_spec" db:"additional_spec"`
	Grade          string   `json:"grade" db:"grade"`
	ODCategory     string   `json:"od_category" db:"od_category"`
	WTSchedule     string   `json:"wt_schedule" db:"wt_schedule"`
}

// SnapshotData holds one ingested snapshot workbook, split by source sheet.
type SnapshotData struct {
	Date         time.Time         `json:"date"`
	Stock        []InventoryRecord `json:"stock"`
	Incoming     []InventoryRecord `json:"incoming"`
	Reservations []InventoryRecord `json:"reservations"`
}

// Records returns the records for a given source sheet.
func (s *SnapshotData) Records(source SourceType) []InventoryRecord {
	switch source {
	case SourceStock:
		return s.Stock
	case SourceIncoming:
		return s.Incoming
	case SourceReservations:
		return s.Reservations
	}
	return nil
}

// AggregatedRecord is one (Specification, OD, WT) group with summed MT per
// source and the derived Free-For-Sale quantity. Built fresh per render,
// never persisted.
type AggregatedRecord struct {
	Specification  string  `json:"specification"`
	OD             float64 `json:"od"`
	WT             float64 `json:"wt"`
	Make           string  `json:"make,omitempty"`
	Branch         string  `json:"branch,omitempty"`
	AdditionalSpec string  `json:"additional_spec,omitempty"`
	StockMT        float64 `json:"stock_mt"`
	ReservationsMT float64 `json:"reservations_mt"`
	IncomingMT     float64 `json:"incoming_mt"`
	FreeForSaleMT  float64 `json:"free_for_sale_mt"`
}

// ComparisonRecord is one product key compared across two snapshots.
type ComparisonRecord struct {
	Key           string           `json:"key"`
	Specification string           `json:"specification"`
	OD            string           `json:"od"`
	WT            string           `json:"wt"`
	OldMT         float64          `json:"old_mt"`
	NewMT         float64          `json:"new_mt"`
	Delta         float64          `json:"delta"`
	Status        ComparisonStatus `json:"status"`

	// IsZeroDifference is true only when both sides carry a real quantity
	// and the delta is within tolerance, distinguishing "present in both,
	// same value" from "both effectively zero".
	IsZeroDifference bool `json:"is_zero_difference"`
}

// RankedSpec is one entry of the priority list: a specification and its
// total Free-For-Sale tonnage across all dimensions.
type RankedSpec struct {
	Specification      string  `json:"specification"`
	TotalFreeForSaleMT float64 `json:"total_free_for_sale_mt"`
}

// SpecSummary holds per-specification metrics for report consumers,
// rounded to 2 decimals.
type SpecSummary struct {
	Specification string  `json:"specification"`
	StockMT       float64 `json:"stock_mt"`
	ReservationMT float64 `json:"reservation_mt"`
	IncomingMT    float64 `json:"incoming_mt"`
	FreeForSaleMT float64 `json:"free_for_sale_mt"`
}

// HeatmapFilter narrows which records feed a heatmap build.
type HeatmapFilter struct {
	SnapshotDate  string     `json:"snapshot_date"`
	Source        SourceType `json:"source"`
	Grade         string     `json:"grade"`
	Specification string     `json:"specification"`
}
