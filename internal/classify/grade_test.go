package classify

import "testing"

func TestGradeClassifierPatternFallback(t *testing.T) {
	c := NewGradeClassifier(nil)

	tests := []struct {
		name     string
		spec     string
		combine  bool
		expected string
	}{
		{"empty string", "", true, GradeUnknown},
		{"whitespace only", "   ", true, GradeUnknown},
		{"embedded IS wins over CS prefix", "CSEWPIS1239PT1", true, GradeIS},
		{"embedded tube hint ST52", "CSSMT2391ST52", true, GradeTubes},
		{"embedded TUBE hint", "ASBOILTUBE210", true, GradeTubes},
		{"cs prefix combined", "CSSMP106B", true, GradeCombined},
		{"cs prefix raw", "CSSMP106B", false, GradeCS},
		{"as prefix combined", "ASSMPP11", true, GradeCombined},
		{"as prefix raw", "ASSMPP11", false, GradeAS},
		{"ss prefix", "SSSMP312TP304", true, GradeSS},
		{"is prefix", "IS3589FE330", true, GradeIS},
		{"t prefix", "TCOLD510", true, GradeTubes},
		{"lowercase input", "cssmp106b", true, GradeCombined},
		{"no match", "XYZ999", true, GradeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.spec, tt.combine); got != tt.expected {
				t.Errorf("Classify(%q, %v) = %q, want %q", tt.spec, tt.combine, got, tt.expected)
			}
		})
	}
}

func TestGradeClassifierMappingTable(t *testing.T) {
	c := NewGradeClassifier(map[string]string{
		"CSSMP106B":  "CS",
		"ASSMPP22":   "AS",
		"SA210TUBES": "TUBES",
		"SSSMP312":   "SS",
	})

	tests := []struct {
		name     string
		spec     string
		combine  bool
		expected string
	}{
		{"mapped CS combined", "CSSMP106B", true, GradeCombined},
		{"mapped CS raw", "CSSMP106B", false, GradeCS},
		{"mapped AS combined", "ASSMPP22", true, GradeCombined},
		{"mapped TUBES combined", "SA210TUBES", true, GradeTubes},
		{"mapped TUBES raw", "SA210TUBES", false, "TUBES"},
		{"mapped SS unaffected by combine", "SSSMP312", true, GradeSS},
		{"unmapped falls back to patterns", "CSEWPIS1239PT1", true, GradeIS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.spec, tt.combine); got != tt.expected {
				t.Errorf("Classify(%q, %v) = %q, want %q", tt.spec, tt.combine, got, tt.expected)
			}
		})
	}
}

func TestGradeClassifierMappingLookupPreservesCase(t *testing.T) {
	c := NewGradeClassifier(map[string]string{"CSSMP106B": "CS"})

	// Table lookup is exact; a lowercase variant misses the table and
	// goes through the pattern rules instead.
	if got := c.Classify("cssmp106b", false); got != GradeCS {
		t.Errorf("expected pattern fallback to CS, got %q", got)
	}
}
