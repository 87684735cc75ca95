package classify

import (
	"strings"

	"github.com/andresuchdata/pipestock/backend-go/internal/refdata"
)

// Sentinel labels for dimensions that match no reference entry.
const (
	NonStandardOD  = "Non Standard OD"
	UnknownOD      = "Unknown OD"
	UnknownGrade   = "Unknown Grade"
	NonSTD         = "Non STD"
	NonISStandard  = "Non IS Standard"
	NonStandardTube = "Non-Standard Tube"
)

// DimensionClassifier maps (OD, WT, grade) onto nominal-size and
// wall-thickness schedule labels using the shared reference tables.
type DimensionClassifier struct {
	tables *refdata.Tables
}

// NewDimensionClassifier builds a classifier over the given tables,
// falling back to the built-in ones when nil.
func NewDimensionClassifier(tables *refdata.Tables) *DimensionClassifier {
	if tables == nil {
		tables = refdata.Default()
	}
	return &DimensionClassifier{tables: tables}
}

// ClassifyOD returns the nominal pipe/tube size label for an outer
// diameter. The grade string selects the family table; lookups are exact
// against the reference diameters and anything else resolves to the
// family's no-match sentinel.
func (c *DimensionClassifier) ClassifyOD(od *float64, grade string) string {
	if grade == "" {
		return UnknownGrade
	}

	family := strings.ToLower(strings.TrimSpace(grade))
	switch {
	case strings.Contains(family, "is"):
		return lookupOD(c.tables.ISOD, od, NonStandardOD)
	case strings.Contains(family, "tube"):
		return lookupOD(c.tables.TubeOD, od, UnknownOD)
	default:
		// SS shares the carbon diameters, so everything that is not IS
		// or tube resolves against the carbon table.
		return lookupOD(c.tables.CarbonOD, od, NonStandardOD)
	}
}

// ClassifyWT returns the wall-thickness schedule label for an (OD, WT)
// pair. Bands are evaluated in the fixed family order and the first
// tolerance match wins; tube bands require exact pair membership.
func (c *DimensionClassifier) ClassifyWT(od, wt *float64, grade string) string {
	if grade == "" {
		return GradeUnknown
	}

	family := strings.ToLower(strings.TrimSpace(grade))
	switch {
	case strings.Contains(family, "tube"):
		return c.classifyTubeWT(od, wt)
	case strings.Contains(family, "is"):
		return matchBands(c.tables.ISBands, od, wt, NonISStandard)
	case strings.Contains(family, "cs"), strings.Contains(family, "carbon"),
		strings.Contains(family, "as"), strings.Contains(family, "alloy"):
		return matchBands(c.tables.CarbonBands, od, wt, NonSTD)
	case strings.Contains(family, "ss"), strings.Contains(family, "stainless"):
		return matchBands(c.tables.StainlessBands, od, wt, NonSTD)
	}

	return GradeUnknown
}

func (c *DimensionClassifier) classifyTubeWT(od, wt *float64) string {
	if od == nil || wt == nil {
		return NonStandardTube
	}
	for _, band := range c.tables.TubeBands {
		if band.Contains(*od, *wt) {
			return band.Label
		}
	}
	return NonStandardTube
}

func lookupOD(table map[float64]string, od *float64, fallback string) string {
	if od == nil {
		return fallback
	}
	if label, ok := table[*od]; ok {
		return label
	}
	return fallback
}

func matchBands(bands []refdata.Band, od, wt *float64, fallback string) string {
	if od == nil || wt == nil {
		return fallback
	}
	for _, band := range bands {
		if band.Matches(*od, *wt) {
			return band.Label
		}
	}
	return fallback
}
