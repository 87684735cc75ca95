// Package classify derives material grades from free-text specification
// codes and maps (OD, WT) pairs to standardized size-category labels.
// Every entry point is total: unclassifiable input resolves to a sentinel
// label, never to an error or an empty string.
package classify

import "strings"

// Grade labels the classifiers emit.
const (
	GradeUnknown  = "Unknown"
	GradeCS       = "CS"
	GradeAS       = "AS"
	GradeSS       = "SS"
	GradeIS       = "IS"
	GradeTubes    = "Tubes"
	GradeCombined = "CS & AS"
)

// tubeHints are the substrings that mark an embedded tube reference in a
// specification code (e.g. CSSMT2391ST52).
var tubeHints = []string{"TUBE", "TUB", "ST52", "ST42"}

// GradeClassifier derives a grade from a specification code, preferring
// an exact mapping table and falling back to pattern rules. The mapping
// is optional: a nil or empty map degrades to pattern-only mode.
type GradeClassifier struct {
	mapping map[string]string
}

// NewGradeClassifier builds a classifier over the given
// specification -> grade type mapping. The map is captured as-is and must
// not be mutated afterwards.
func NewGradeClassifier(mapping map[string]string) *GradeClassifier {
	return &GradeClassifier{mapping: mapping}
}

// Classify returns the grade for a specification code. When combineCSAS
// is true the CS and AS grades collapse into "CS & AS" and TUBES into
// "Tubes", which is the form the dimension tables are keyed by; when
// false the raw table label is returned for display.
func (c *GradeClassifier) Classify(specification string, combineCSAS bool) string {
	spec := strings.TrimSpace(specification)
	if spec == "" {
		return GradeUnknown
	}

	if grade, ok := c.mapping[spec]; ok {
		if combineCSAS {
			switch grade {
			case GradeAS, GradeCS:
				return GradeCombined
			case "TUBES":
				return GradeTubes
			}
		}
		return grade
	}

	upper := strings.ToUpper(spec)

	// Embedded IS-standard references (e.g. CSEWPIS1239PT1) win over the
	// prefix rules below.
	if strings.Contains(upper, "IS") && !strings.HasPrefix(upper, "IS") {
		return GradeIS
	}

	if strings.Contains(upper, "T") && !strings.HasPrefix(upper, "T") {
		for _, hint := range tubeHints {
			if strings.Contains(upper, hint) {
				return GradeTubes
			}
		}
	}

	switch {
	case strings.HasPrefix(upper, "AS"):
		if combineCSAS {
			return GradeCombined
		}
		return GradeAS
	case strings.HasPrefix(upper, "CS"):
		if combineCSAS {
			return GradeCombined
		}
		return GradeCS
	case strings.HasPrefix(upper, "SS"):
		return GradeSS
	case strings.HasPrefix(upper, "IS"):
		return GradeIS
	case strings.HasPrefix(upper, "T"):
		return GradeTubes
	}

	return GradeUnknown
}
