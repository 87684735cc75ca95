// Package refdata holds the industry size tables the classifiers run
// against: nominal-pipe-size lookups per outer diameter and the
// wall-thickness schedule bands with their reference (OD, WT) points.
// All tables are immutable after construction and shared by every
// classification entry point.
package refdata

// Matching tolerances in millimeters for schedule band membership.
// Carried over unchanged from the legacy size tables; see DESIGN.md.
const (
	ODTolerance = 1.0
	WTTolerance = 0.2
)

// Pair is one reference (OD, WT) point in millimeters.
type Pair struct {
	OD float64
	WT float64
}

// Band is one wall-thickness schedule and the reference points that
// define it. A candidate (OD, WT) matches the band when it lies within
// tolerance of any reference point.
type Band struct {
	Label string
	Pairs []Pair
}

// Matches reports whether (od, wt) lies within tolerance of any
// reference pair in the band.
func (b Band) Matches(od, wt float64) bool {
	for _, p := range b.Pairs {
		if abs(od-p.OD) <= ODTolerance && abs(wt-p.WT) <= WTTolerance {
			return true
		}
	}
	return false
}

// Contains reports exact pair membership, used for tube bands which do
// not tolerate measurement drift.
func (b Band) Contains(od, wt float64) bool {
	for _, p := range b.Pairs {
		if p.OD == od && p.WT == wt {
			return true
		}
	}
	return false
}

// Tables bundles every reference lookup the classifiers need. Build one
// with Default() at startup and treat it as read-only; a reload must
// construct a fresh Tables and swap the handle, never mutate in place.
type Tables struct {
	// OD -> nominal size label, per grade family. The SS table is the
	// carbon table: both families share ASME B36 outside diameters.
	CarbonOD map[float64]string
	ISOD     map[float64]string
	TubeOD   map[float64]string

	// Schedule bands in evaluation order. Order is load-bearing: STD and
	// SCH 40 share reference points for small sizes (as do XS and SCH 80),
	// and the first match wins.
	CarbonBands    []Band
	StainlessBands []Band
	ISBands        []Band

	// Tube bands use exact membership. The last band enumerates known
	// extra-heavy walls that still label as non-standard.
	TubeBands []Band

	// Display orders for pivot axes.
	ODOrder      []string
	CarbonWTOrder []string
	SSWTOrder    []string
	ISWTOrder    []string
	TubeWTOrder  []string
}

var defaultTables = &Tables{
	CarbonOD:       carbonODMap,
	ISOD:           isODMap,
	TubeOD:         tubeODMap,
	CarbonBands:    carbonBands,
	StainlessBands: stainlessBands,
	ISBands:        isBands,
	TubeBands:      tubeBands,
	ODOrder:        odOrder,
	CarbonWTOrder:  carbonWTOrder,
	SSWTOrder:      ssWTOrder,
	ISWTOrder:      isWTOrder,
	TubeWTOrder:    tubeWTOrder,
}

// Default returns the built-in tables.
func Default() *Tables {
	return defaultTables
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
