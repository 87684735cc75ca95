package domain

import "strings"

// ComparisonStatus classifies how a product key changed between two snapshots.
type ComparisonStatus string

const (
	StatusAdded     ComparisonStatus = "Added"
	StatusRemoved   ComparisonStatus = "Removed"
	StatusIncreased ComparisonStatus = "Increased"
	StatusDecreased ComparisonStatus = "Decreased"
	StatusUnchanged ComparisonStatus = "Unchanged"
)

var comparisonStatuses = map[string]ComparisonStatus{
	"added":     StatusAdded,
	"removed":   StatusRemoved,
	"increased": StatusIncreased,
	"decreased": StatusDecreased,
	"unchanged": StatusUnchanged,
}

// ParseComparisonStatus returns the status for a given label (case-insensitive).
func ParseComparisonStatus(label string) (ComparisonStatus, bool) {
	status, ok := comparisonStatuses[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}

// Valid reports whether s is one of the five enumerated statuses.
func (s ComparisonStatus) Valid() bool {
	_, ok := comparisonStatuses[strings.ToLower(string(s))]
	return ok
}
